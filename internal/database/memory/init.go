package memory

import (
	"github.com/docbench/docbench/pkg/binding"
)

func init() {
	// Register the in-memory binding with the global registry
	binding.Register(Name, New)
}

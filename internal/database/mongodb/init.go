package mongodb

import (
	"github.com/docbench/docbench/pkg/binding"
)

func init() {
	// Register the MongoDB binding with the global registry
	binding.Register(Name, New)
}

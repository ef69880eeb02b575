// Package workload generates CRUD workloads and drives them against a
// registered binding with concurrent workers.
package workload

import (
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/docbench/docbench/pkg/binding"
)

// Config describes one workload: the data set to load and the operation mix
// to run against it.
type Config struct {
	Table          string
	RecordCount    int
	OperationCount int
	FieldCount     int
	FieldLength    int

	// Operation mix for the run phase. Proportions are relative weights;
	// they do not have to sum to 1.
	ReadProportion   float64
	UpdateProportion float64
	InsertProportion float64
	ScanProportion   float64

	// MaxScanLength bounds the record count of a single scan.
	MaxScanLength int

	Threads int
}

// DefaultConfig returns the standard read-heavy workload.
func DefaultConfig() Config {
	return Config{
		Table:            "usertable",
		RecordCount:      1000,
		OperationCount:   1000,
		FieldCount:       10,
		FieldLength:      100,
		ReadProportion:   0.95,
		UpdateProportion: 0.05,
		MaxScanLength:    100,
		Threads:          1,
	}
}

// Validate checks the configuration for a runnable workload.
func (c Config) Validate() error {
	if c.Table == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if c.RecordCount <= 0 {
		return fmt.Errorf("record count must be positive, got %d", c.RecordCount)
	}
	if c.OperationCount <= 0 {
		return fmt.Errorf("operation count must be positive, got %d", c.OperationCount)
	}
	if c.FieldCount <= 0 || c.FieldLength <= 0 {
		return fmt.Errorf("field count and length must be positive, got %d x %d", c.FieldCount, c.FieldLength)
	}
	if c.Threads <= 0 {
		return fmt.Errorf("thread count must be positive, got %d", c.Threads)
	}
	if c.ReadProportion < 0 || c.UpdateProportion < 0 || c.InsertProportion < 0 || c.ScanProportion < 0 {
		return fmt.Errorf("operation proportions cannot be negative")
	}
	total := c.ReadProportion + c.UpdateProportion + c.InsertProportion + c.ScanProportion
	if total <= 0 {
		return fmt.Errorf("operation proportions sum to zero")
	}
	if c.ScanProportion > 0 && c.MaxScanLength <= 0 {
		return fmt.Errorf("max scan length must be positive when scans are enabled")
	}
	return nil
}

type operation int

const (
	opRead operation = iota
	opUpdate
	opInsert
	opScan
)

func (o operation) String() string {
	switch o {
	case opRead:
		return "read"
	case opUpdate:
		return "update"
	case opInsert:
		return "insert"
	case opScan:
		return "scan"
	default:
		return "unknown"
	}
}

// keyName maps a record sequence number onto a key. Zero padding keeps
// lexicographic key order equal to insertion order, which gives scans a
// meaningful range.
func keyName(sequence int64) string {
	return fmt.Sprintf("user%012d", sequence)
}

const valueAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generator produces keys, values, and the operation mix for one worker.
// Each worker owns its own generator; only the insert sequence is shared.
type generator struct {
	cfg      Config
	rng      *rand.Rand
	sequence *atomic.Int64
}

func newGenerator(cfg Config, seed int64, sequence *atomic.Int64) *generator {
	return &generator{
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(seed)),
		sequence: sequence,
	}
}

// nextOperation draws one operation from the configured mix.
func (g *generator) nextOperation() operation {
	total := g.cfg.ReadProportion + g.cfg.UpdateProportion + g.cfg.InsertProportion + g.cfg.ScanProportion
	draw := g.rng.Float64() * total

	if draw -= g.cfg.ReadProportion; draw < 0 {
		return opRead
	}
	if draw -= g.cfg.UpdateProportion; draw < 0 {
		return opUpdate
	}
	if draw -= g.cfg.InsertProportion; draw < 0 {
		return opInsert
	}
	return opScan
}

// randomKey picks a uniformly distributed key from the loaded key space.
func (g *generator) randomKey() string {
	return keyName(g.rng.Int63n(int64(g.cfg.RecordCount)))
}

// nextInsertKey claims the next key from the shared insert sequence.
func (g *generator) nextInsertKey() string {
	return keyName(g.sequence.Add(1) - 1)
}

// buildRecord generates a full record with FieldCount random values.
func (g *generator) buildRecord() binding.Record {
	record := make(binding.Record, g.cfg.FieldCount)
	for i := 0; i < g.cfg.FieldCount; i++ {
		record[fieldName(i)] = g.randomValue()
	}
	return record
}

// buildUpdate generates a single-field record for a partial update.
func (g *generator) buildUpdate() binding.Record {
	return binding.Record{
		fieldName(g.rng.Intn(g.cfg.FieldCount)): g.randomValue(),
	}
}

// scanLength draws a scan size in [1, MaxScanLength].
func (g *generator) scanLength() int {
	return 1 + g.rng.Intn(g.cfg.MaxScanLength)
}

func (g *generator) randomValue() []byte {
	value := make([]byte, g.cfg.FieldLength)
	for i := range value {
		value[i] = valueAlphabet[g.rng.Intn(len(valueAlphabet))]
	}
	return value
}

func fieldName(i int) string {
	return fmt.Sprintf("field%d", i)
}

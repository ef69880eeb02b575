// Package memory implements the binding contract against an in-process map.
// It is the behavioral reference for the document-store bindings and the
// target for dry runs that need no server.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/docbench/docbench/pkg/binding"
	"github.com/docbench/docbench/pkg/logger"
)

// Name is the registry name of this binding.
const Name = "memory"

// store is the process-wide database shared by all binding instances,
// mirroring how the real bindings share one connection pool.
type store struct {
	mu     sync.RWMutex
	tables map[string]map[string]binding.Record
}

func (s *store) table(name string) map[string]binding.Record {
	t := s.tables[name]
	if t == nil {
		t = make(map[string]binding.Record)
		s.tables[name] = t
	}
	return t
}

// shared is the process-wide store state. The first Init ever publishes the
// store; it then lives for the process lifetime, like a real server, so data
// written by a load phase survives into the run phase even though every
// binding instance is torn down in between.
var shared struct {
	mu    sync.Mutex
	store atomic.Pointer[store]
}

// Binding implements binding.DB against the shared in-memory store.
type Binding struct {
	log *logger.Logger
}

// New creates a new in-memory binding instance.
func New(log *logger.Logger) binding.DB {
	return &Binding{log: log}
}

// Init publishes the shared store on the first call ever; later calls are
// no-ops.
func (b *Binding) Init(props binding.Properties) error {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	if shared.store.Load() != nil {
		return nil
	}

	shared.store.Store(&store{tables: make(map[string]map[string]binding.Record)})
	return nil
}

// Cleanup releases the binding instance. The store itself stays alive so
// later instances see the same data.
func (b *Binding) Cleanup() error {
	return nil
}

// Insert stores a copy of the record under key, replacing any existing
// record wholesale.
func (b *Binding) Insert(ctx context.Context, table, key string, values binding.Record) binding.Status {
	s := shared.store.Load()
	if s == nil {
		b.log.Errorf("insert %s/%s: %v", table, key, binding.ErrNotInitialized)
		return binding.StatusError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.table(table)[key] = cloneRecord(values, nil)
	return binding.StatusOK
}

// Read copies the record under key into result, restricted to fields when
// non-nil. Not-found leaves result untouched and reports StatusError.
func (b *Binding) Read(ctx context.Context, table, key string, fields []string, result binding.Record) binding.Status {
	s := shared.store.Load()
	if s == nil {
		b.log.Errorf("read %s/%s: %v", table, key, binding.ErrNotInitialized)
		return binding.StatusError
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.tables[table][key]
	if !ok {
		return binding.StatusError
	}

	for field, value := range cloneRecord(record, fields) {
		result[field] = value
	}
	return binding.StatusOK
}

// Update merges the supplied fields into the record under key. A missing
// record is a no-op that still reports StatusOK.
func (b *Binding) Update(ctx context.Context, table, key string, values binding.Record) binding.Status {
	s := shared.store.Load()
	if s == nil {
		b.log.Errorf("update %s/%s: %v", table, key, binding.ErrNotInitialized)
		return binding.StatusError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.tables[table][key]
	if !ok {
		return binding.StatusOK
	}

	for field, value := range values {
		record[field] = append([]byte(nil), value...)
	}
	return binding.StatusOK
}

// Delete removes the record under key. Deleting an absent key is not an
// error.
func (b *Binding) Delete(ctx context.Context, table, key string) binding.Status {
	s := shared.store.Load()
	if s == nil {
		b.log.Errorf("delete %s/%s: %v", table, key, binding.ErrNotInitialized)
		return binding.StatusError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tables[table], key)
	return binding.StatusOK
}

// Scan appends up to count records with keys at or after startKey to result
// in ascending key order. An empty range is still StatusOK.
func (b *Binding) Scan(ctx context.Context, table, startKey string, count int, fields []string, result *[]binding.Record) binding.Status {
	s := shared.store.Load()
	if s == nil {
		b.log.Errorf("scan %s/%s: %v", table, startKey, binding.ErrNotInitialized)
		return binding.StatusError
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.tables[table]))
	for key := range s.tables[table] {
		if key >= startKey {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	if len(keys) > count {
		keys = keys[:count]
	}

	for _, key := range keys {
		*result = append(*result, cloneRecord(s.tables[table][key], fields))
	}
	return binding.StatusOK
}

// cloneRecord copies a record, restricted to fields when non-nil, so callers
// can never alias stored values.
func cloneRecord(record binding.Record, fields []string) binding.Record {
	clone := make(binding.Record, len(record))
	if fields == nil {
		for field, value := range record {
			clone[field] = append([]byte(nil), value...)
		}
		return clone
	}
	for _, field := range fields {
		if value, ok := record[field]; ok {
			clone[field] = append([]byte(nil), value...)
		}
	}
	return clone
}

package binding

import "context"

// Record is one stored record: a mapping from field name to an opaque byte
// value. Fields are dynamic per call; there is no fixed schema.
type Record map[string][]byte

// Status is the result code a binding reports to the harness for a data
// operation. The contract is deliberately coarse: success or failure, with
// "not found" counting as failure for reads only.
type Status int

const (
	// StatusOK means the operation succeeded. Deletes of absent keys and
	// updates that matched no record still report StatusOK.
	StatusOK Status = 0

	// StatusError means the operation failed, or a read found no record.
	StatusError Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// DB is the capability surface a database binding exposes to the harness.
//
// The harness creates one DB instance per worker; instances of the same
// binding within one process share a single physical connection handle.
// Init and Cleanup are reference-counted around that handle: the first Init
// opens it, the last Cleanup closes it.
//
// Data operations never return errors. Any failure is logged by the binding
// and collapsed to StatusError.
type DB interface {
	// Init prepares the binding instance. Configuration errors (malformed
	// connection URL, unresolvable database name) and connection failures
	// are returned so the harness can abort before running a workload.
	Init(props Properties) error

	// Cleanup releases the binding instance. Closes the shared handle when
	// this is the last live instance.
	Cleanup() error

	// Insert stores the record under key, replacing any existing record
	// with the same key wholesale.
	Insert(ctx context.Context, table, key string, values Record) Status

	// Read looks up the record under key. When fields is non-nil only the
	// named fields are retrieved. The found field/value pairs are copied
	// into result; on not-found result is left untouched and StatusError is
	// returned.
	Read(ctx context.Context, table, key string, fields []string, result Record) Status

	// Update merges the supplied fields into the record under key. Fields
	// not mentioned stay untouched. A missing record is a no-op that still
	// reports StatusOK.
	Update(ctx context.Context, table, key string, values Record) Status

	// Delete removes the record under key. Deleting an absent key is not
	// an error.
	Delete(ctx context.Context, table, key string) Status

	// Scan retrieves up to count records with keys at or after startKey in
	// key order, appending one Record per result to result. An empty range
	// is still StatusOK.
	Scan(ctx context.Context, table, startKey string, count int, fields []string, result *[]Record) Status
}

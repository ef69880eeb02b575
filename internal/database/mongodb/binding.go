package mongodb

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/docbench/docbench/pkg/binding"
	"github.com/docbench/docbench/pkg/logger"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"
)

// Name is the registry name of this binding.
const Name = "mongodb"

const (
	connectTimeout    = 10 * time.Second
	disconnectTimeout = 10 * time.Second
	operationTimeout  = 30 * time.Second
)

// clientHandle is the slice of *mongo.Client the binding uses, separated out
// so lifecycle tests can substitute a fake.
type clientHandle interface {
	Database(name string, opts ...options.Lister[options.DatabaseOptions]) *mongo.Database
	Disconnect(ctx context.Context) error
}

// connectClient opens and verifies the shared client. Package variable so
// tests can substitute a fake transport.
var connectClient = func(cfg *clientConfig) (clientHandle, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.url))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	return client, nil
}

// handle is the immutable shared state published by the first Init. All
// binding instances observe the same handle, database name, read preference,
// and write concern once published.
type handle struct {
	client       clientHandle
	database     string
	readPref     *readpref.ReadPref
	writeConcern *writeconcern.WriteConcern
}

func (h *handle) collection(table string) *mongo.Collection {
	opts := options.Collection()
	if h.readPref != nil {
		opts.SetReadPreference(h.readPref)
	}
	if h.writeConcern != nil {
		opts.SetWriteConcern(h.writeConcern)
	}
	return h.client.Database(h.database).Collection(table, opts)
}

// shared is the process-wide client state. The reference count tracks live
// binding instances so the last Cleanup closes the client exactly once; the
// mutex serializes first-time setup and teardown only.
var shared struct {
	mu     sync.Mutex
	refs   atomic.Int32
	handle atomic.Pointer[handle]
}

// Binding implements binding.DB against a MongoDB document store. The
// harness creates one instance per worker; all instances share one client.
type Binding struct {
	log *logger.Logger
}

// New creates a new MongoDB binding instance.
func New(log *logger.Logger) binding.DB {
	return &Binding{log: log}
}

// Init increments the shared reference count and, on the first call, parses
// the connection URL and opens the shared client. Later calls are no-ops
// apart from the reference count. Configuration and connection failures are
// returned and release the failed call's reference.
func (b *Binding) Init(props binding.Properties) error {
	shared.refs.Add(1)

	shared.mu.Lock()
	defer shared.mu.Unlock()

	if shared.handle.Load() != nil {
		return nil
	}

	cfg, err := parseConfig(props)
	if err != nil {
		shared.refs.Add(-1)
		return err
	}

	client, err := connectClient(cfg)
	if err != nil {
		shared.refs.Add(-1)
		return binding.NewConnectionError(Name, cfg.hosts, err)
	}

	shared.handle.Store(&handle{
		client:       client,
		database:     cfg.database,
		readPref:     cfg.readPref,
		writeConcern: cfg.writeConcern,
	})

	b.log.Infof("mongodb connection created with %s", cfg.url)
	return nil
}

// Cleanup decrements the shared reference count and closes the shared client
// when it reaches zero. Close failures are logged and swallowed.
func (b *Binding) Cleanup() error {
	if shared.refs.Add(-1) > 0 {
		return nil
	}

	shared.mu.Lock()
	defer shared.mu.Unlock()

	h := shared.handle.Load()
	if h == nil {
		return nil
	}
	shared.handle.Store(nil)

	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()

	if err := h.client.Disconnect(ctx); err != nil {
		b.log.Errorf("could not close mongodb connection pool: %v", err)
	}
	return nil
}

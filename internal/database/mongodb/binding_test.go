package mongodb

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbench/docbench/pkg/binding"
	"github.com/docbench/docbench/pkg/logger"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// fakeClient stands in for the driver client so lifecycle tests need no
// server. Only Disconnect matters; the data operations never run against it.
type fakeClient struct {
	disconnects atomic.Int32
}

func (f *fakeClient) Database(name string, opts ...options.Lister[options.DatabaseOptions]) *mongo.Database {
	return nil
}

func (f *fakeClient) Disconnect(ctx context.Context) error {
	f.disconnects.Add(1)
	return nil
}

func resetShared() {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	shared.handle.Store(nil)
	shared.refs.Store(0)
}

// withFakeClient swaps the connect hook for one returning a fake client and
// restores everything when the test finishes.
func withFakeClient(t *testing.T) *fakeClient {
	t.Helper()

	fake := &fakeClient{}
	orig := connectClient
	connectClient = func(cfg *clientConfig) (clientHandle, error) {
		return fake, nil
	}
	t.Cleanup(func() {
		connectClient = orig
		resetShared()
	})
	resetShared()
	return fake
}

func TestSharedClientLifecycle(t *testing.T) {
	fake := withFakeClient(t)
	log := logger.New("test")

	const workers = 8
	instances := make([]binding.DB, workers)
	for i := range instances {
		instances[i] = New(log)
	}

	var wg sync.WaitGroup
	for _, db := range instances {
		wg.Add(1)
		go func(db binding.DB) {
			defer wg.Done()
			assert.NoError(t, db.Init(binding.Properties{}))
		}(db)
	}
	wg.Wait()

	require.NotNil(t, shared.handle.Load())
	assert.Equal(t, int32(workers), shared.refs.Load())

	// All but the last cleanup must leave the client open.
	for _, db := range instances[:workers-1] {
		wg.Add(1)
		go func(db binding.DB) {
			defer wg.Done()
			assert.NoError(t, db.Cleanup())
		}(db)
	}
	wg.Wait()

	assert.Equal(t, int32(0), fake.disconnects.Load())
	require.NotNil(t, shared.handle.Load())

	require.NoError(t, instances[workers-1].Cleanup())
	assert.Equal(t, int32(1), fake.disconnects.Load())
	assert.Nil(t, shared.handle.Load())
}

func TestInitConfigurationError(t *testing.T) {
	withFakeClient(t)

	db := New(logger.New("test"))
	err := db.Init(binding.Properties{"mongodb.url": "localhost:27017"})

	require.Error(t, err)
	assert.True(t, binding.IsConfigurationError(err))
	assert.Nil(t, shared.handle.Load())

	// A failed init holds no reference.
	assert.Equal(t, int32(0), shared.refs.Load())
}

func TestInitConnectionError(t *testing.T) {
	withFakeClient(t)

	cause := errors.New("connection refused")
	connectClient = func(cfg *clientConfig) (clientHandle, error) {
		return nil, cause
	}

	db := New(logger.New("test"))
	err := db.Init(binding.Properties{})

	require.Error(t, err)
	assert.True(t, binding.IsConnectionError(err))
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, shared.handle.Load())
	assert.Equal(t, int32(0), shared.refs.Load())
}

func TestOperationsBeforeInit(t *testing.T) {
	resetShared()
	t.Cleanup(resetShared)

	db := New(logger.New("test"))
	ctx := context.Background()

	result := binding.Record{}
	var results []binding.Record

	assert.Equal(t, binding.StatusError, db.Insert(ctx, "usertable", "user0", binding.Record{"field0": []byte("v")}))
	assert.Equal(t, binding.StatusError, db.Read(ctx, "usertable", "user0", nil, result))
	assert.Equal(t, binding.StatusError, db.Update(ctx, "usertable", "user0", binding.Record{"field0": []byte("v")}))
	assert.Equal(t, binding.StatusError, db.Delete(ctx, "usertable", "user0"))
	assert.Equal(t, binding.StatusError, db.Scan(ctx, "usertable", "user0", 10, nil, &results))

	assert.Empty(t, result)
	assert.Empty(t, results)
}

func TestCleanupWithoutInit(t *testing.T) {
	resetShared()
	t.Cleanup(resetShared)

	db := New(logger.New("test"))
	assert.NoError(t, db.Cleanup())
}

package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbench/docbench/pkg/binding"
	"github.com/docbench/docbench/pkg/logger"
)

// newTestDB initializes a binding instance against the process-wide store.
// Each test works in its own table so tests stay independent of each other
// and of execution order.
func newTestDB(t *testing.T) binding.DB {
	t.Helper()

	db := New(logger.New("test"))
	require.NoError(t, db.Init(binding.Properties{}))
	t.Cleanup(func() {
		assert.NoError(t, db.Cleanup())
	})
	return db
}

func testTable(t *testing.T) string {
	return fmt.Sprintf("table_%s", t.Name())
}

func record(pairs ...string) binding.Record {
	r := make(binding.Record, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		r[pairs[i]] = []byte(pairs[i+1])
	}
	return r
}

func TestInsertReadRoundTrip(t *testing.T) {
	db := newTestDB(t)
	table := testTable(t)
	ctx := context.Background()

	stored := record("field0", "alpha", "field1", "beta")
	require.Equal(t, binding.StatusOK, db.Insert(ctx, table, "user0", stored))

	result := binding.Record{}
	require.Equal(t, binding.StatusOK, db.Read(ctx, table, "user0", nil, result))
	assert.Equal(t, stored, result)
}

func TestReadProjection(t *testing.T) {
	db := newTestDB(t)
	table := testTable(t)
	ctx := context.Background()

	require.Equal(t, binding.StatusOK, db.Insert(ctx, table, "user0",
		record("field0", "alpha", "field1", "beta", "field2", "gamma")))

	result := binding.Record{}
	require.Equal(t, binding.StatusOK, db.Read(ctx, table, "user0", []string{"field1"}, result))
	assert.Equal(t, record("field1", "beta"), result)
}

func TestReadMissing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	result := binding.Record{}
	assert.Equal(t, binding.StatusError, db.Read(ctx, testTable(t), "nope", nil, result))
	assert.Empty(t, result)
}

func TestInsertReplacesWholeRecord(t *testing.T) {
	db := newTestDB(t)
	table := testTable(t)
	ctx := context.Background()

	require.Equal(t, binding.StatusOK, db.Insert(ctx, table, "user0",
		record("field0", "alpha", "field1", "beta")))
	require.Equal(t, binding.StatusOK, db.Insert(ctx, table, "user0",
		record("field2", "gamma")))

	result := binding.Record{}
	require.Equal(t, binding.StatusOK, db.Read(ctx, table, "user0", nil, result))
	assert.Equal(t, record("field2", "gamma"), result)
}

func TestUpdateMergesFields(t *testing.T) {
	db := newTestDB(t)
	table := testTable(t)
	ctx := context.Background()

	require.Equal(t, binding.StatusOK, db.Insert(ctx, table, "user0",
		record("field0", "alpha", "field1", "beta")))
	require.Equal(t, binding.StatusOK, db.Update(ctx, table, "user0",
		record("field1", "changed", "field2", "added")))

	result := binding.Record{}
	require.Equal(t, binding.StatusOK, db.Read(ctx, table, "user0", nil, result))
	assert.Equal(t, record("field0", "alpha", "field1", "changed", "field2", "added"), result)
}

func TestUpdateMissingIsNoOp(t *testing.T) {
	db := newTestDB(t)
	table := testTable(t)
	ctx := context.Background()

	assert.Equal(t, binding.StatusOK, db.Update(ctx, table, "nope", record("field0", "v")))

	result := binding.Record{}
	assert.Equal(t, binding.StatusError, db.Read(ctx, table, "nope", nil, result))
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	table := testTable(t)
	ctx := context.Background()

	require.Equal(t, binding.StatusOK, db.Insert(ctx, table, "user0", record("field0", "v")))
	require.Equal(t, binding.StatusOK, db.Delete(ctx, table, "user0"))

	result := binding.Record{}
	assert.Equal(t, binding.StatusError, db.Read(ctx, table, "user0", nil, result))

	// Deleting an absent key is not an error.
	assert.Equal(t, binding.StatusOK, db.Delete(ctx, table, "user0"))
}

func TestScanRangeAndOrder(t *testing.T) {
	db := newTestDB(t)
	table := testTable(t)
	ctx := context.Background()

	for _, key := range []string{"k4", "k1", "k3", "k2", "k5"} {
		require.Equal(t, binding.StatusOK, db.Insert(ctx, table, key, record("field0", key)))
	}

	var results []binding.Record
	require.Equal(t, binding.StatusOK, db.Scan(ctx, table, "k2", 2, nil, &results))

	require.Len(t, results, 2)
	assert.Equal(t, record("field0", "k2"), results[0])
	assert.Equal(t, record("field0", "k3"), results[1])
}

func TestScanProjection(t *testing.T) {
	db := newTestDB(t)
	table := testTable(t)
	ctx := context.Background()

	require.Equal(t, binding.StatusOK, db.Insert(ctx, table, "k1",
		record("field0", "alpha", "field1", "beta")))

	var results []binding.Record
	require.Equal(t, binding.StatusOK, db.Scan(ctx, table, "k1", 10, []string{"field1"}, &results))

	require.Len(t, results, 1)
	assert.Equal(t, record("field1", "beta"), results[0])
}

func TestScanEmptyRange(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	var results []binding.Record
	assert.Equal(t, binding.StatusOK, db.Scan(ctx, testTable(t), "zzz", 10, nil, &results))
	assert.Empty(t, results)
}

func TestStoreSurvivesCleanup(t *testing.T) {
	table := testTable(t)
	ctx := context.Background()

	loader := New(logger.New("test"))
	require.NoError(t, loader.Init(binding.Properties{}))
	require.Equal(t, binding.StatusOK, loader.Insert(ctx, table, "user0", record("field0", "v")))
	require.NoError(t, loader.Cleanup())

	runner := New(logger.New("test"))
	require.NoError(t, runner.Init(binding.Properties{}))
	defer runner.Cleanup()

	result := binding.Record{}
	assert.Equal(t, binding.StatusOK, runner.Read(ctx, table, "user0", nil, result))
	assert.Equal(t, record("field0", "v"), result)
}

func TestReadResultDoesNotAliasStore(t *testing.T) {
	db := newTestDB(t)
	table := testTable(t)
	ctx := context.Background()

	require.Equal(t, binding.StatusOK, db.Insert(ctx, table, "user0", record("field0", "abc")))

	result := binding.Record{}
	require.Equal(t, binding.StatusOK, db.Read(ctx, table, "user0", nil, result))
	result["field0"][0] = 'X'

	fresh := binding.Record{}
	require.Equal(t, binding.StatusOK, db.Read(ctx, table, "user0", nil, fresh))
	assert.Equal(t, []byte("abc"), fresh["field0"])
}

package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docbench/docbench/pkg/binding"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestByID(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "_id", Value: "user42"}}, byID("user42"))
}

func TestProjection(t *testing.T) {
	proj := projection([]string{"field0", "field3"})
	assert.Equal(t, bson.D{
		{Key: "field0", Value: 1},
		{Key: "field3", Value: 1},
	}, proj)

	assert.Equal(t, bson.D{}, projection([]string{}))
}

func TestFillRecord(t *testing.T) {
	doc := bson.D{
		{Key: "_id", Value: "user7"},
		{Key: "field0", Value: bson.Binary{Data: []byte("alpha")}},
		{Key: "field1", Value: bson.Binary{Data: []byte("beta")}},
		{Key: "count", Value: int32(3)},
	}

	record := binding.Record{}
	fillRecord(record, doc)

	assert.Equal(t, binding.Record{
		"_id":    []byte("user7"),
		"field0": []byte("alpha"),
		"field1": []byte("beta"),
	}, record)
}

func TestFillRecordMergesIntoExisting(t *testing.T) {
	record := binding.Record{"field9": []byte("kept")}
	fillRecord(record, bson.D{{Key: "field0", Value: bson.Binary{Data: []byte("new")}}})

	assert.Equal(t, []byte("kept"), record["field9"])
	assert.Equal(t, []byte("new"), record["field0"])
}

func TestBinaryFields(t *testing.T) {
	doc := bson.D{
		{Key: "_id", Value: "user7"},
		{Key: "field0", Value: bson.Binary{Data: []byte("alpha")}},
		{Key: "count", Value: int32(3)},
	}

	record := binaryFields(doc)

	// Non-binary values, the string _id included, are dropped.
	assert.Equal(t, binding.Record{"field0": []byte("alpha")}, record)
}

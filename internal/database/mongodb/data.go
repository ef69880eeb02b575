package mongodb

import (
	"context"
	"errors"

	"github.com/docbench/docbench/pkg/binding"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Insert builds a document containing _id plus all supplied fields and
// upserts it wholesale under the key. A repeated insert replaces the whole
// document, it does not merge fields.
func (b *Binding) Insert(ctx context.Context, table, key string, values binding.Record) binding.Status {
	h := shared.handle.Load()
	if h == nil {
		b.log.Errorf("insert %s/%s: %v", table, key, binding.ErrNotInitialized)
		return binding.StatusError
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	doc := bson.D{{Key: "_id", Value: key}}
	for field, value := range values {
		doc = append(doc, bson.E{Key: field, Value: bson.Binary{Data: value}})
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := h.collection(table).ReplaceOne(ctx, byID(key), doc, opts); err != nil {
		b.log.Errorf("%v", binding.WrapError(Name, "insert", err))
		return binding.StatusError
	}
	return binding.StatusOK
}

// Read looks up the document under the key, restricted to the requested
// projection when fields is non-nil, and copies its field/value pairs into
// result. Not-found leaves result untouched and reports StatusError.
func (b *Binding) Read(ctx context.Context, table, key string, fields []string, result binding.Record) binding.Status {
	h := shared.handle.Load()
	if h == nil {
		b.log.Errorf("read %s/%s: %v", table, key, binding.ErrNotInitialized)
		return binding.StatusError
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	opts := options.FindOne()
	if fields != nil {
		opts.SetProjection(projection(fields))
	}

	var doc bson.D
	err := h.collection(table).FindOne(ctx, byID(key), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return binding.StatusError
	}
	if err != nil {
		b.log.Errorf("%v", binding.WrapError(Name, "read", err))
		return binding.StatusError
	}

	fillRecord(result, doc)
	return binding.StatusOK
}

// Update applies a field-level $set merge to the document under the key.
// No upsert: a missing document is a no-op that still reports StatusOK.
func (b *Binding) Update(ctx context.Context, table, key string, values binding.Record) binding.Status {
	h := shared.handle.Load()
	if h == nil {
		b.log.Errorf("update %s/%s: %v", table, key, binding.ErrNotInitialized)
		return binding.StatusError
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	set := bson.D{}
	for field, value := range values {
		set = append(set, bson.E{Key: field, Value: bson.Binary{Data: value}})
	}
	update := bson.D{{Key: "$set", Value: set}}

	if _, err := h.collection(table).UpdateOne(ctx, byID(key), update); err != nil {
		b.log.Errorf("%v", binding.WrapError(Name, "update", err))
		return binding.StatusError
	}
	return binding.StatusOK
}

// Delete removes the document under the key. Deleting an absent key is not
// an error.
func (b *Binding) Delete(ctx context.Context, table, key string) binding.Status {
	h := shared.handle.Load()
	if h == nil {
		b.log.Errorf("delete %s/%s: %v", table, key, binding.ErrNotInitialized)
		return binding.StatusError
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	if _, err := h.collection(table).DeleteOne(ctx, byID(key)); err != nil {
		b.log.Errorf("%v", binding.WrapError(Name, "delete", err))
		return binding.StatusError
	}
	return binding.StatusOK
}

// Scan retrieves up to count documents with _id at or after startKey, in the
// order the index yields them (no explicit sort), and appends one record per
// document to result. Only binary-typed stored values appear in the records.
func (b *Binding) Scan(ctx context.Context, table, startKey string, count int, fields []string, result *[]binding.Record) binding.Status {
	h := shared.handle.Load()
	if h == nil {
		b.log.Errorf("scan %s/%s: %v", table, startKey, binding.ErrNotInitialized)
		return binding.StatusError
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$gte", Value: startKey}}}}
	opts := options.Find().SetLimit(int64(count))
	if fields != nil {
		opts.SetProjection(projection(fields))
	}

	cursor, err := h.collection(table).Find(ctx, filter, opts)
	if err != nil {
		b.log.Errorf("%v", binding.WrapError(Name, "scan", err))
		return binding.StatusError
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			b.log.Errorf("%v", binding.WrapError(Name, "scan", err))
			return binding.StatusError
		}
		*result = append(*result, binaryFields(doc))
	}
	if err := cursor.Err(); err != nil {
		b.log.Errorf("%v", binding.WrapError(Name, "scan", err))
		return binding.StatusError
	}

	return binding.StatusOK
}

func byID(key string) bson.D {
	return bson.D{{Key: "_id", Value: key}}
}

// projection builds an inclusion projection for the requested fields.
func projection(fields []string) bson.D {
	proj := bson.D{}
	for _, field := range fields {
		proj = append(proj, bson.E{Key: field, Value: 1})
	}
	return proj
}

// fillRecord copies every representable field/value pair from doc into out.
// Stored values are BSON binary; the identity field decodes as a string and
// is carried over as its raw bytes.
func fillRecord(out binding.Record, doc bson.D) {
	for _, elem := range doc {
		switch v := elem.Value.(type) {
		case bson.Binary:
			out[elem.Key] = v.Data
		case string:
			out[elem.Key] = []byte(v)
		}
	}
}

// binaryFields keeps only binary-typed values from doc. The record model
// treats every field as an opaque byte sequence, so fields of any other
// stored type are dropped from scan results.
func binaryFields(doc bson.D) binding.Record {
	record := make(binding.Record)
	for _, elem := range doc {
		if v, ok := elem.Value.(bson.Binary); ok {
			record[elem.Key] = v.Data
		}
	}
	return record
}

package storage

import (
	"context"
	stderrors "errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/conneroisu/webbuilder/internal/errors"
)

// Mongo is a KV backed by one collection. Each key is a document whose _id
// is the key.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoEntry struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// OpenMongo connects to uri and verifies the server is reachable.
func OpenMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.NewStorageError("connect mongo", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.NewStorageError("ping mongo", err)
	}

	return &Mongo{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (m *Mongo) Get(ctx context.Context, key string) (string, error) {
	var e mongoEntry
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return "", notFound(key)
	}
	if err != nil {
		return "", errors.NewStorageError("get "+key, err)
	}

	return e.Value, nil
}

func (m *Mongo) Set(ctx context.Context, key, value string) error {
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"value": value, "updatedAt": time.Now().UTC()}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return errors.NewStorageError("set "+key, err)
	}

	return nil
}

func (m *Mongo) Delete(ctx context.Context, key string) error {
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return errors.NewStorageError("delete "+key, err)
	}

	return nil
}

func (m *Mongo) Keys(ctx context.Context, prefix string) ([]string, error) {
	filter := bson.M{}
	if prefix != "" {
		filter["_id"] = bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}
	}
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.NewStorageError("list keys", err)
	}
	defer cur.Close(ctx)

	var keys []string
	for cur.Next(ctx) {
		var e mongoEntry
		if err := cur.Decode(&e); err != nil {
			return nil, errors.NewStorageError("decode key", err)
		}
		keys = append(keys, e.Key)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.NewStorageError("list keys", err)
	}

	return keys, nil
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return m.client.Disconnect(ctx)
}

package kv

import (
	"context"
	"errors"
	"time"

	"aurabags-storefront/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const mongoCollection = "kv_entries"

type mongoStore struct {
	coll      *mongo.Collection
	namespace string
}

type mongoEntry struct {
	ID        string    `bson:"_id"`
	Namespace string    `bson:"namespace"`
	Key       string    `bson:"key"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// ConnectMongo opens a client and verifies it with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

// NewMongo stores values in the kv_entries collection of db.
func NewMongo(db *mongo.Database, namespace string) Store {
	return &mongoStore{coll: db.Collection(mongoCollection), namespace: namespace}
}

func (s *mongoStore) id(key string) string {
	return s.namespace + ":" + key
}

func (s *mongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry mongoEntry
	err := s.coll.FindOne(ctx, bson.M{"_id": s.id(key)}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return entry.Value, nil
}

func (s *mongoStore) Set(ctx context.Context, key string, value []byte) error {
	entry := mongoEntry{
		ID:        s.id(key),
		Namespace: s.namespace,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": entry.ID}, entry, options.Replace().SetUpsert(true))
	return err
}

func (s *mongoStore) Delete(ctx context.Context, key string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.id(key)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

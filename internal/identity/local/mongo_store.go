package local

import (
	"context"
	"errors"

	"codbank/internal/identity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCredentialStore keeps credentials in a MongoDB collection.
type MongoCredentialStore struct {
	collection *mongo.Collection
}

// NewMongoCredentialStore creates the store and its indexes.
func NewMongoCredentialStore(ctx context.Context, db *mongo.Database, collection string) (*MongoCredentialStore, error) {
	store := &MongoCredentialStore{collection: db.Collection(collection)}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "uid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := store.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, err
	}
	return store, nil
}

// Insert stores a new credential.
func (s *MongoCredentialStore) Insert(ctx context.Context, cred *Credential) error {
	if _, err := s.collection.InsertOne(ctx, cred); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return identity.ErrEmailInUse
		}
		return err
	}
	return nil
}

// FindByEmail loads the credential for an address.
func (s *MongoCredentialStore) FindByEmail(ctx context.Context, email string) (*Credential, error) {
	var cred Credential
	err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&cred)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCredentialNotFound
		}
		return nil, err
	}
	return &cred, nil
}

package docstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"codbank/internal/shared/errors"
	"codbank/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Reserved Mongo fields. The document id is its full path; the parent is the
// collection path it belongs to.
const (
	fieldID     = "_id"
	fieldParent = "_parent"
)

// MongoStore maps every leaf collection id to a Mongo collection of the same name.
type MongoStore struct {
	db     *mongo.Database
	logger logger.Logger
}

// NewMongoStore creates a Mongo-backed document store.
func NewMongoStore(db *mongo.Database, log logger.Logger) *MongoStore {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &MongoStore{
		db:     db,
		logger: log.WithComponent("docstore"),
	}
}

// EnsureIndexes creates the parent index used by ListDocuments on each collection.
func (s *MongoStore) EnsureIndexes(ctx context.Context, collectionIDs ...string) error {
	for _, id := range collectionIDs {
		_, err := s.db.Collection(id).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: fieldParent, Value: 1}},
		})
		if err != nil {
			return errors.NewInfrastructureError("failed to create docstore index").
				WithCause(err).
				WithDetail("collection", id)
		}
	}
	return nil
}

func (s *MongoStore) collection(p Path) *mongo.Collection {
	return s.db.Collection(p.CollectionID())
}

// GetDocument implements Store.
func (s *MongoStore) GetDocument(ctx context.Context, path string, dst interface{}) error {
	p, err := ParseDocumentPath(path)
	if err != nil {
		return err
	}

	err = s.collection(p).FindOne(ctx, bson.M{fieldID: p.String()}).Decode(dst)
	if err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return notFound(p.String())
		}
		return s.infraError("failed to read document", p, err)
	}
	return nil
}

// SetDocument implements Store.
func (s *MongoStore) SetDocument(ctx context.Context, path string, data interface{}) error {
	p, err := ParseDocumentPath(path)
	if err != nil {
		return err
	}

	doc, err := toDocument(data)
	if err != nil {
		return errors.NewValidationError("document data cannot be encoded").WithCause(err)
	}
	doc[fieldID] = p.String()
	doc[fieldParent] = p.Parent()

	_, err = s.collection(p).ReplaceOne(ctx, bson.M{fieldID: p.String()}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return s.infraError("failed to write document", p, err)
	}

	s.logger.WithContext(ctx).Debugf("Document written: %s", p.String())
	return nil
}

// UpdateDocument implements Store.
func (s *MongoStore) UpdateDocument(ctx context.Context, path string, fields map[string]interface{}) error {
	p, err := ParseDocumentPath(path)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	for name := range fields {
		if err := validateFieldName(name); err != nil {
			return err
		}
	}

	result, err := s.collection(p).UpdateOne(ctx, bson.M{fieldID: p.String()}, bson.M{"$set": fields})
	if err != nil {
		return s.infraError("failed to update document", p, err)
	}
	if result.MatchedCount == 0 {
		return notFound(p.String())
	}
	return nil
}

// ListDocuments implements Store.
func (s *MongoStore) ListDocuments(ctx context.Context, collectionPath string, dst interface{}) error {
	p, err := ParseCollectionPath(collectionPath)
	if err != nil {
		return err
	}

	cursor, err := s.db.Collection(p.ID()).Find(ctx,
		bson.M{fieldParent: p.String()},
		options.Find().SetSort(bson.D{{Key: fieldID, Value: 1}}),
	)
	if err != nil {
		return s.infraError("failed to list documents", p, err)
	}
	if err := cursor.All(ctx, dst); err != nil {
		return s.infraError("failed to decode documents", p, err)
	}
	return nil
}

// IncrementField implements Store.
func (s *MongoStore) IncrementField(ctx context.Context, path, field string, delta, floor float64) (float64, error) {
	p, err := ParseDocumentPath(path)
	if err != nil {
		return 0, err
	}
	if err := validateFieldName(field); err != nil {
		return 0, err
	}

	filter := bson.M{fieldID: p.String()}
	if delta < 0 {
		filter[field] = bson.M{"$gte": floor - delta}
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{field: 1})

	var out bson.M
	err = s.collection(p).FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{field: delta}}, opts).Decode(&out)
	if err != nil {
		if !stderrors.Is(err, mongo.ErrNoDocuments) {
			return 0, s.infraError("failed to increment field", p, err)
		}
		n, countErr := s.collection(p).CountDocuments(ctx, bson.M{fieldID: p.String()})
		if countErr != nil {
			return 0, s.infraError("failed to increment field", p, countErr)
		}
		if n == 0 {
			return 0, notFound(p.String())
		}
		return 0, ErrBelowFloor
	}

	value, ok := toFloat(out[field])
	if !ok {
		return 0, errors.NewInternalError("incremented field is not numeric").WithDetail("field", field)
	}
	return value, nil
}

func (s *MongoStore) infraError(message string, p Path, cause error) error {
	return errors.NewInfrastructureError(message).
		WithCause(cause).
		WithComponent("docstore").
		WithDetail("path", p.String())
}

func toDocument(data interface{}) (bson.M, error) {
	raw, err := bson.Marshal(data)
	if err != nil {
		return nil, err
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func validateFieldName(name string) error {
	if name == "" || strings.HasPrefix(name, "_") || strings.ContainsAny(name, "$.") {
		return errors.NewValidationError(fmt.Sprintf("invalid field name %q", name)).WithComponent("docstore")
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"codbank/internal/docstore/rules"
	"codbank/internal/shared/utils"
)

// GuardedStore checks every call against the rule engine before delegating.
// The caller is taken from the user id and role carried by ctx.
type GuardedStore struct {
	inner  Store
	engine *rules.Engine
}

var _ Store = (*GuardedStore)(nil)

func NewGuardedStore(inner Store, engine *rules.Engine) *GuardedStore {
	return &GuardedStore{inner: inner, engine: engine}
}

func (s *GuardedStore) GetDocument(ctx context.Context, path string, dst interface{}) error {
	if err := s.check(ctx, rules.OpRead, path, nil); err != nil {
		return err
	}
	return s.inner.GetDocument(ctx, path, dst)
}

func (s *GuardedStore) SetDocument(ctx context.Context, path string, data interface{}) error {
	request, err := requestData(data)
	if err != nil {
		return err
	}
	if err := s.check(ctx, rules.OpCreate, path, request); err != nil {
		return err
	}
	return s.inner.SetDocument(ctx, path, data)
}

func (s *GuardedStore) UpdateDocument(ctx context.Context, path string, fields map[string]interface{}) error {
	request, err := requestData(fields)
	if err != nil {
		return err
	}
	if err := s.check(ctx, rules.OpUpdate, path, request); err != nil {
		return err
	}
	return s.inner.UpdateDocument(ctx, path, fields)
}

func (s *GuardedStore) ListDocuments(ctx context.Context, collectionPath string, dst interface{}) error {
	if err := s.check(ctx, rules.OpList, collectionPath, nil); err != nil {
		return err
	}
	return s.inner.ListDocuments(ctx, collectionPath, dst)
}

func (s *GuardedStore) IncrementField(ctx context.Context, path, field string, delta, floor float64) (float64, error) {
	if err := s.check(ctx, rules.OpUpdate, path, map[string]interface{}{field: delta}); err != nil {
		return 0, err
	}
	return s.inner.IncrementField(ctx, path, field, delta, floor)
}

func (s *GuardedStore) check(ctx context.Context, op rules.Operation, path string, request map[string]interface{}) error {
	subject := rules.Subject{Path: path, Request: request}
	if uid := utils.GetUserIDOrDefault(ctx, ""); uid != "" {
		subject.Auth = &rules.Auth{UID: uid, Role: utils.GetRoleFromContext(ctx)}
	}
	return s.engine.Allow(ctx, op, subject)
}

// requestData flattens a document into the generic map the rule expressions see,
// with every number as a float64.
func requestData(data interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document for rule evaluation: %w", err)
	}
	request := make(map[string]interface{})
	if err := json.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("document must encode as an object: %w", err)
	}
	return request, nil
}

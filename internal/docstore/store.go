// Package docstore is a path-addressed document store: documents live at
// "collection/doc[/subcollection/doc...]" and are read and written whole or by field.
package docstore

import (
	"context"
	stderrors "errors"

	"codbank/internal/shared/errors"
)

var (
	ErrDocumentNotFound = errors.ErrDocumentNotFound
	ErrInvalidPath      = errors.ErrInvalidPath
	ErrBelowFloor       = stderrors.New("field would drop below the allowed minimum")
)

// Store is the document store the banking code depends on.
type Store interface {
	// GetDocument decodes the document at path into dst.
	GetDocument(ctx context.Context, path string, dst interface{}) error
	// SetDocument creates or fully overwrites the document at path.
	SetDocument(ctx context.Context, path string, data interface{}) error
	// UpdateDocument merges fields into an existing document.
	UpdateDocument(ctx context.Context, path string, fields map[string]interface{}) error
	// ListDocuments decodes every document directly under collectionPath into dst, a pointer to a slice.
	ListDocuments(ctx context.Context, collectionPath string, dst interface{}) error
	// IncrementField atomically adds delta to a numeric field, refusing results below floor,
	// and returns the new value.
	IncrementField(ctx context.Context, path, field string, delta, floor float64) (float64, error)
}

func notFound(path string) *errors.AppError {
	return errors.NewNotFoundError("document").
		WithCause(ErrDocumentNotFound).
		WithComponent("docstore").
		WithDetail("path", path)
}

package docstore

import (
	"regexp"
	"strings"

	"codbank/internal/shared/errors"
)

// Path is a parsed slash-separated store path. Document paths have an even number of
// segments, collection paths an odd number.
type Path struct {
	segments []string
}

var validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const maxIDLength = 1500

// ParseDocumentPath parses and validates a document path such as "codusers/uid".
func ParseDocumentPath(path string) (Path, error) {
	p, err := parse(path)
	if err != nil {
		return Path{}, err
	}
	if !p.IsDocument() {
		return Path{}, invalidPath("document path must have an even number of segments", path)
	}
	return p, nil
}

// ParseCollectionPath parses and validates a collection path such as "codusers/uid/accounts".
func ParseCollectionPath(path string) (Path, error) {
	p, err := parse(path)
	if err != nil {
		return Path{}, err
	}
	if p.IsDocument() {
		return Path{}, invalidPath("collection path must have an odd number of segments", path)
	}
	return p, nil
}

// ParsePath accepts either kind of path.
func ParsePath(path string) (Path, error) {
	return parse(path)
}

func parse(path string) (Path, error) {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return Path{}, invalidPath("path cannot be empty", path)
	}
	for _, segment := range segments {
		if !IsValidID(segment) {
			return Path{}, invalidPath("invalid path segment", path).WithDetail("segment", segment)
		}
	}
	return Path{segments: segments}, nil
}

func invalidPath(message, path string) *errors.AppError {
	return errors.NewValidationError(message).
		WithCause(errors.ErrInvalidPath).
		WithComponent("docstore").
		WithDetail("path", path)
}

// SplitPath splits a path into non-empty segments.
func SplitPath(path string) []string {
	var result []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			result = append(result, segment)
		}
	}
	return result
}

// JoinPath joins segments, dropping empty ones and stray slashes.
func JoinPath(segments ...string) string {
	var valid []string
	for _, segment := range segments {
		if segment = strings.Trim(segment, "/"); segment != "" {
			valid = append(valid, segment)
		}
	}
	return strings.Join(valid, "/")
}

// IsValidID checks a single path segment.
func IsValidID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	return validIDPattern.MatchString(id)
}

// String returns the canonical path.
func (p Path) String() string {
	return strings.Join(p.segments, "/")
}

// Segments returns a copy of the path segments.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// IsDocument reports whether p addresses a document.
func (p Path) IsDocument() bool {
	return len(p.segments) > 0 && len(p.segments)%2 == 0
}

// ID returns the last segment: the document id or the collection id.
func (p Path) ID() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// CollectionID returns the id of the collection p lives in, or p's own id for a collection.
func (p Path) CollectionID() string {
	if p.IsDocument() {
		return p.segments[len(p.segments)-2]
	}
	return p.ID()
}

// Parent returns the collection path of a document, or the owning document path of a
// collection. The root collection has no parent and returns "".
func (p Path) Parent() string {
	if len(p.segments) <= 1 {
		return ""
	}
	return strings.Join(p.segments[:len(p.segments)-1], "/")
}

// Child appends segments to p.
func (p Path) Child(segments ...string) (Path, error) {
	return parse(JoinPath(append([]string{p.String()}, segments...)...))
}

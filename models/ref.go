package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedRef is returned when a reference path cannot be parsed
	ErrMalformedRef = errors.New("malformed reference path")
	// ErrRefCollection is returned when a reference points into the wrong collection
	ErrRefCollection = errors.New("reference points at another collection")
)

// Ref is a weak reference to a document in another collection.
// It carries no ownership; resolving it is an explicit lookup.
type Ref struct {
	Collection string
	ID         string
}

// NewRef returns a reference to the document id in collection.
func NewRef(collection, id string) *Ref {
	return &Ref{Collection: collection, ID: id}
}

// Path returns the "COLLECTION/id" form used by every serialized representation.
func (r Ref) Path() string {
	return r.Collection + "/" + r.ID
}

func (r Ref) String() string {
	return r.Path()
}

// ParseRef rebuilds a reference from its path form.
func ParseRef(path string) (*Ref, error) {
	collection, id, ok := strings.Cut(path, "/")
	if !ok || collection == "" || id == "" || strings.Contains(id, "/") {
		return nil, fmt.Errorf("%w: %q", ErrMalformedRef, path)
	}
	return &Ref{Collection: collection, ID: id}, nil
}

// MarshalJSON writes the reference as its path string.
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Path())
}

// UnmarshalJSON accepts a path string. A JSON null leaves the pointer holding
// this Ref untouched, so *Ref fields decode null as nil.
func (r *Ref) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRef, err)
	}
	parsed, err := ParseRef(path)
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}

// SameRef reports whether both references point at the same document. Two nil
// references are considered equal.
func SameRef(a, b *Ref) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ExpectCollection checks that r, when set, points into collection.
func ExpectCollection(r *Ref, collection string) error {
	if r == nil || r.Collection == collection {
		return nil
	}
	return fmt.Errorf("%w: %s is not in %s", ErrRefCollection, r.Path(), collection)
}

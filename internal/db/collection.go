package db

import (
	"context"
	"errors"
)

// ErrNoDocument is returned by FindByID when no document matches.
var ErrNoDocument = errors.New("document not found")

// Document pairs a document with its _id.
type Document struct {
	ID  string
	Doc interface{}
}

// Collection defines the document operations the snapshot store needs.
type Collection interface {
	FindAll(ctx context.Context, out interface{}) error
	FindByID(ctx context.Context, id string, out interface{}) error
	ReplaceAll(ctx context.Context, docs []Document) error
	Upsert(ctx context.Context, id string, doc interface{}) error
}

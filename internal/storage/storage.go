// Package storage keeps report files by name, either on local disk or in S3.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

var (
	ErrNotFound    = errors.New("stored file not found")
	ErrInvalidName = errors.New("invalid file name")
)

// Store holds opaque report bytes keyed by a flat file name. Writing an existing
// name replaces it.
type Store interface {
	Stage(ctx context.Context, name string, content []byte) (Staged, error)
	Put(ctx context.Context, name string, content []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	Exists(ctx context.Context, name string) (bool, error)
}

// Staged is written content that is not yet visible under its name. Exactly one
// of Commit or Discard should be called; Discard after Commit is a no-op.
type Staged interface {
	Commit() error
	Discard() error
}

// SafeName reduces a client supplied name to its base component.
func SafeName(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	base := path.Base(path.Clean("/" + name))
	if base == "" || base == "/" || base == "." || base == ".." {
		return "", ErrInvalidName
	}
	return base, nil
}

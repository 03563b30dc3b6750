package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (store *DiskStore) path(name string) (string, error) {
	safe, err := SafeName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(store.dir, safe), nil
}

func (store *DiskStore) Stage(ctx context.Context, name string, content []byte) (Staged, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := store.path(name)
	if err != nil {
		return nil, err
	}

	tempPath := filepath.Join(store.dir, ".staging-"+uuid.NewString())
	if err := os.WriteFile(tempPath, content, 0o640); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("stage %s: %w", filepath.Base(target), err)
	}
	return &diskStaged{tempPath: tempPath, target: target}, nil
}

func (store *DiskStore) Put(ctx context.Context, name string, content []byte) error {
	staged, err := store.Stage(ctx, name, content)
	if err != nil {
		return err
	}
	if err := staged.Commit(); err != nil {
		_ = staged.Discard()
		return err
	}
	return nil
}

func (store *DiskStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := store.path(name)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(target), err)
	}
	return content, nil
}

func (store *DiskStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	target, err := store.path(name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", filepath.Base(target), err)
	}
	return info.Mode().IsRegular(), nil
}

type diskStaged struct {
	tempPath  string
	target    string
	committed bool
}

func (staged *diskStaged) Commit() error {
	if err := os.Rename(staged.tempPath, staged.target); err != nil {
		return fmt.Errorf("commit %s: %w", filepath.Base(staged.target), err)
	}
	staged.committed = true
	return nil
}

func (staged *diskStaged) Discard() error {
	if staged.committed {
		return nil
	}
	if err := os.Remove(staged.tempPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

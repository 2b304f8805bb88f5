package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// LocalStore keeps tables as directories under a root path.
type LocalStore struct {
	root string
}

// NewLocal creates a LocalStore rooted at root.
func NewLocal(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Stage creates the staging directory inside the root so Replace is a same-filesystem
// rename.
func (s *LocalStore) Stage(table string) (string, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", eris.Wrapf(err, "storage: create output root %s", s.root)
	}
	dir, err := os.MkdirTemp(s.root, "."+table+"-staging-")
	if err != nil {
		return "", eris.Wrapf(err, "storage: stage %s", table)
	}
	return dir, nil
}

// Replace removes the current table directory and renames staged into its place.
func (s *LocalStore) Replace(ctx context.Context, table, staged string) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "storage: replace cancelled")
	}
	dst := s.Location(table)
	if err := os.RemoveAll(dst); err != nil {
		return eris.Wrapf(err, "storage: remove %s", dst)
	}
	if err := os.Rename(staged, dst); err != nil {
		return eris.Wrapf(err, "storage: move %s into place", table)
	}
	zap.L().Debug("table replaced", zap.String("component", "storage.local"), zap.String("location", dst))
	return nil
}

// Location is the table directory.
func (s *LocalStore) Location(table string) string {
	return filepath.Join(s.root, table)
}

// Root is the directory tables are written under.
func (s *LocalStore) Root() string {
	return s.root
}

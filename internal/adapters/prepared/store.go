package prepared

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/okian/growtho/internal/domain/model"
)

// Store provides read/write access to prepared datasets by name.
type Store interface {
	// Save writes d to its own directory and returns that directory.
	Save(ctx context.Context, d model.PreparedData) (string, error)
	// Load reads the dataset called name.
	Load(ctx context.Context, name string) (model.PreparedData, error)
	// Dir returns the directory a dataset called name lives in.
	Dir(name string) string
}

// DirStore keeps each dataset in root/<name>.
type DirStore struct {
	root string
}

// Option applies a configuration option to the DirStore.
type Option func(*DirStore)

// WithRoot sets the directory holding prepared datasets.
func WithRoot(root string) Option {
	return func(s *DirStore) {
		if root != "" {
			s.root = root
		}
	}
}

// NewDirStore returns a DirStore rooted at ./data/prepared unless overridden.
func NewDirStore(opts ...Option) *DirStore {
	s := &DirStore{root: filepath.Join("data", "prepared")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir implements Store.
func (s *DirStore) Dir(name string) string { return filepath.Join(s.root, name) }

// Save implements Store.
func (s *DirStore) Save(ctx context.Context, d model.PreparedData) (string, error) {
	if err := checkName(d.Name); err != nil {
		return "", err
	}
	dir := s.Dir(d.Name)
	return dir, Write(ctx, dir, d)
}

// Load implements Store.
func (s *DirStore) Load(ctx context.Context, name string) (model.PreparedData, error) {
	if err := checkName(name); err != nil {
		return model.PreparedData{}, err
	}
	return Read(ctx, s.Dir(name))
}

// checkName keeps dataset directories directly under the root.
func checkName(name string) error {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return model.Violation(model.TableName, "directory_name", "%q cannot be used as a directory name", name)
	}
	return nil
}

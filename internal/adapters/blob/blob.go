// Package blob selects a blob storage driver and publishes prepared dataset
// directories to it.
package blob

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/okian/growtho/internal/adapters/blob/core"
	"github.com/okian/growtho/internal/adapters/blob/fs"
	"github.com/okian/growtho/internal/adapters/blob/memory"
	"github.com/okian/growtho/internal/adapters/blob/s3"
)

// Config selects and configures a driver. An empty Driver disables publishing.
type Config struct {
	Driver core.Driver
	Root   string // fs driver root
	S3     s3.Config
}

// Open returns the configured store, or nil when publishing is disabled.
func Open(ctx context.Context, cfg Config) (core.Store, error) {
	switch cfg.Driver {
	case "":
		return nil, nil
	case core.DriverFilesystem:
		return fs.New(cfg.Root)
	case core.DriverS3:
		return s3.New(ctx, cfg.S3)
	case core.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

var contentTypes = map[string]string{
	".csv":  "text/csv",
	".json": "application/json",
	".txt":  "text/plain",
}

// ContentType returns the content type published for name.
func ContentType(name string) string {
	if ct, ok := contentTypes[filepath.Ext(name)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Publish uploads every regular file directly inside dir to store under
// prefix/<file>, in file name order. It stops at the first failure and
// returns what was uploaded so far.
func Publish(ctx context.Context, store core.Store, dir, prefix string, md map[string]string) ([]core.Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	var out []core.Info
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		info, err := putFile(ctx, store, filepath.Join(dir, e.Name()), path.Join(prefix, e.Name()), md)
		if err != nil {
			return out, fmt.Errorf("publish %s: %w", e.Name(), err)
		}
		out = append(out, info)
	}
	return out, nil
}

func putFile(ctx context.Context, store core.Store, file, key string, md map[string]string) (core.Info, error) {
	f, err := os.Open(file)
	if err != nil {
		return core.Info{}, err
	}
	defer func() { _ = f.Close() }()
	return store.Put(ctx, key, f, core.PutOptions{ContentType: ContentType(file), Metadata: md})
}

// Package assets stores and loads the pretrained scoring models. Assets
// are opaque named blobs kept either in a directory or in a SQLite
// database; the Loader decodes them according to a manifest entry.
package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"polyreact/core/errs"
)

// Info describes one stored asset.
type Info struct {
	Name       string
	Format     string
	Size       int64
	SHA256     string
	ImportedAt time.Time
}

// Store is a read-only view of named model blobs.
type Store interface {
	Get(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context) ([]Info, error)
}

// DirStore serves assets from files under Root.
type DirStore struct {
	Root string
}

// Get reads Root/name. Names may not escape Root.
func (d DirStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || filepath.IsAbs(name) || strings.Contains(filepath.ToSlash(name), "..") {
		return nil, fmt.Errorf("invalid asset name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(d.Root, filepath.FromSlash(name)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s in %s", errs.ErrAssetNotFound, name, d.Root)
	}
	if err != nil {
		return nil, fmt.Errorf("read asset %s: %w", name, err)
	}
	return data, nil
}

// List returns the regular files directly under Root, sorted by name.
func (d DirStore) List(ctx context.Context) ([]Info, error) {
	ents, err := os.ReadDir(d.Root)
	if err != nil {
		return nil, err
	}
	var out []Info
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		data, err := d.Get(ctx, e.Name())
		if err != nil {
			return nil, err
		}
		fi, err := e.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, Info{
			Name:       e.Name(),
			Format:     FormatOf(e.Name()),
			Size:       int64(len(data)),
			SHA256:     Digest(data),
			ImportedAt: fi.ModTime().UTC(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Digest is the hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FormatOf guesses an asset format from its file extension.
func FormatOf(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".onnx") {
		return "onnx"
	}
	return "json"
}

// internal/cmdutil/store.go
package cmdutil

import (
	"polyreact/internal/assets"
	"polyreact/internal/config"
	"polyreact/internal/manifest"
)

// OpenStore picks the asset store named by cfg: the SQLite database when
// AssetDB is set, the asset directory otherwise. The returned close func
// is never nil.
func OpenStore(cfg *config.Config) (assets.Store, func() error, error) {
	if cfg.AssetDB != "" {
		db, err := assets.OpenSQLite(cfg.AssetDB)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
	return assets.DirStore{Root: cfg.AssetDir}, func() error { return nil }, nil
}

// LoadManifest returns the manifest file named by cfg, or the built-in one.
func LoadManifest(cfg *config.Config) (*manifest.Manifest, error) {
	if cfg.Manifest == "" {
		return manifest.Default(), nil
	}
	return manifest.Load(cfg.Manifest)
}

package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/ecalc/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config.yaml"

// defaultDirMode is the permission mode for created directories.
const defaultDirMode os.FileMode = 0o700

// configPath joins the configuration directory with elem.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// cachePath joins the cache directory with elem.
func cachePath(elem ...string) string {
	return filepath.Join(append([]string{pkg.CacheDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configPath(), cachePath()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return pkg.MakeError(err).Wrapf("create %q", dir)
		}
	}

	return nil
}

package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// ErrNotFound is returned when neither a config file nor its local override
// exist.
var ErrNotFound = errors.New("config file not found")

// LocalPath returns the override path for a config file:
// `dir/name.ext` -> `dir/name.local.ext`.
func LocalPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

func readFile(path string) ([]byte, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return contents, err
}

// ReadConfig reads `path` on top of `base` and merges `<name>.local.<ext>`
// over the result. Keys missing from the files keep the value from base.
// Zero values in the local file do not override.
func ReadConfig[T any](path string, base T) (T, error) {
	out := base
	found := false

	contents, err := readFile(path)
	if err != nil {
		return base, err
	}
	if len(contents) > 0 {
		err = json5.Unmarshal(contents, &out)
		if err != nil {
			return base, fmt.Errorf("parse %s: %w", path, err)
		}
		found = true
	}

	localPath := LocalPath(path)
	contents, err = readFile(localPath)
	if err != nil {
		return base, err
	}
	if len(contents) > 0 {
		var override T
		err = json5.Unmarshal(contents, &override)
		if err != nil {
			return base, fmt.Errorf("parse %s: %w", localPath, err)
		}
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return base, err
		}
		slog.Info("merging config with local overrides", "local", localPath)
		found = true
	}

	if !found {
		return base, ErrNotFound
	}
	return out, nil
}

// Find walks up from the working directory until it finds a directory that
// contains `name` or its local override, returning the path of `name` in it.
func Find(name string) (string, error) {
	current, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(current, name)
		for _, p := range []string{candidate, LocalPath(candidate)} {
			_, err := os.Stat(p)
			if err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrNotFound
		}
		current = parent
	}
}

// ReadRecursively is ReadConfig on the first `name` found walking up the
// filesystem from the working directory. Absolute or explicitly relative
// paths (`./x.json5`) are read as given.
func ReadRecursively[T any](name string, base T) (T, string, error) {
	path := name
	if !filepath.IsAbs(name) && !strings.HasPrefix(name, "."+string(filepath.Separator)) {
		found, err := Find(name)
		if err != nil {
			return base, "", err
		}
		path = found
	}

	out, err := ReadConfig(path, base)
	return out, path, err
}

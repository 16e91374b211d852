// Package vault reads and patches scoped text files with a fenced
// front-matter header; unknown keys and the body are preserved exactly
package vault

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	perr "stride/internal/platform/errors"
)

// Vault is rooted at one directory; all paths are vault-relative
type Vault struct {
	root string
}

// New constructs a Vault over root
func New(root string) *Vault { return &Vault{root: filepath.Clean(root)} }

// Root returns the vault root directory
func (v *Vault) Root() string { return v.root }

// Abs resolves a vault-relative path, rejecting escapes above the root
func (v *Vault) Abs(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", perr.InvalidArgf("path %q escapes the vault", rel)
	}
	return filepath.Join(v.root, clean), nil
}

// Rel converts an absolute path under the root back to vault-relative form
func (v *Vault) Rel(abs string) (string, bool) {
	rel, err := filepath.Rel(v.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Read loads a note's metadata and body
func (v *Vault) Read(rel string) (*Metadata, string, error) {
	abs, err := v.Abs(rel)
	if err != nil {
		return nil, "", err
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", perr.NotFoundf("note %s not found", rel)
		}
		return nil, "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "read %s", rel)
	}
	md, body := parseNote(string(raw))
	return md, body, nil
}

// UpdateMetadata rewrites only the keys named in patch, then replaces the
// file via a temp file and atomic rename. The body and all other keys
// survive byte for byte
func (v *Vault) UpdateMetadata(rel string, patch Patch) error {
	abs, err := v.Abs(rel)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return perr.NotFoundf("note %s not found", rel)
		}
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "read %s", rel)
	}
	md, body := parseNote(string(raw))

	// apply in sorted key order so rewrites are deterministic
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		md.set(k, patch[k].raw)
	}

	out := renderNote(md, body)

	tmp, err := os.CreateTemp(filepath.Dir(abs), ".stride-*")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "temp file for %s", rel)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(out); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "write %s", rel)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "close %s", rel)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		os.Remove(tmpName)
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "rename %s", rel)
	}
	return nil
}

// ListFiles walks dir (vault-relative, "" for the root) and returns the
// vault-relative paths of all regular files, sorted
func (v *Vault) ListFiles(dir string) ([]string, error) {
	abs := v.root
	if dir != "" {
		var err error
		abs, err = v.Abs(dir)
		if err != nil {
			return nil, err
		}
	}
	var out []string
	err := filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// skip dot directories like .obsidian
			if path != abs && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if rel, ok := v.Rel(path); ok {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perr.NotFoundf("directory %s not found", dir)
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "walk %s", dir)
	}
	sort.Strings(out)
	return out, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vault abstracts the file store the pipeline reads sources from
// and writes notes into. Paths are relative to the vault root.
package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for callers that branch on storage failures.
var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// Store is the file-store collaborator interface.
type Store interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Create writes content to path, failing if the file already exists.
	Create(path string, content []byte) error
	// Overwrite writes content to path, replacing any existing file.
	Overwrite(path string, content []byte) error
	// EnsureFolder creates the folder at path if missing, parents included.
	EnsureFolder(path string) error
	// Move renames oldPath to newPath and fails with ErrExists if the
	// destination is already occupied.
	Move(oldPath, newPath string) error
	// Exists reports whether a file or folder resolves at path.
	Exists(path string) bool
	// List returns paths of files directly under dir whose extension
	// (without dot, case-insensitive) is in exts.
	List(dir string, exts []string) ([]string, error)
}

// FS implements Store backed by the local file system.
type FS struct {
	root string // absolute path to vault directory
}

// NewFS creates an FS rooted at the given directory, creating it if needed.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("vault: create root: %w", err)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute vault root.
func (f *FS) Root() string { return f.root }

// safePath resolves a relative path against the vault root and rejects any
// result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("vault: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("vault: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("vault: path escapes root: %s", rel)
	}
	return abs, nil
}

// Read returns the raw bytes of the file at path.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("vault: %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("vault: read %s: %w", path, err)
	}
	return data, nil
}

// Create writes content to path, failing if the file already exists.
func (f *FS) Create(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	file, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("vault: %s: %w", path, ErrExists)
		}
		return fmt.Errorf("vault: create %s: %w", path, err)
	}
	defer file.Close()
	if _, err := file.Write(content); err != nil {
		return fmt.Errorf("vault: write %s: %w", path, err)
	}
	return nil
}

// Overwrite writes content to path, replacing any existing file.
func (f *FS) Overwrite(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(abs, content, 0o644); err != nil {
		return fmt.Errorf("vault: overwrite %s: %w", path, err)
	}
	return nil
}

// EnsureFolder creates the folder at path if missing, parents included.
func (f *FS) EnsureFolder(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("vault: ensure folder %s: %w", path, err)
	}
	return nil
}

// Move renames oldPath to newPath. The destination must not exist.
func (f *FS) Move(oldPath, newPath string) error {
	oldAbs, err := f.safePath(oldPath)
	if err != nil {
		return err
	}
	newAbs, err := f.safePath(newPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(newAbs); err == nil {
		return fmt.Errorf("vault: %s: %w", newPath, ErrExists)
	}
	if err := os.Rename(oldAbs, newAbs); err != nil {
		return fmt.Errorf("vault: move %s to %s: %w", oldPath, newPath, err)
	}
	return nil
}

// IsDir reports whether path resolves to a folder.
func (f *FS) IsDir(path string) bool {
	abs, err := f.safePath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.IsDir()
}

// Exists reports whether a file or folder resolves at path.
func (f *FS) Exists(path string) bool {
	abs, err := f.safePath(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

// List returns paths of files directly under dir whose extension (without
// dot, case-insensitive) is in exts. Results are relative to the root.
func (f *FS) List(dir string, exts []string) ([]string, error) {
	abs, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed["."+strings.ToLower(e)] = true
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: list %s: %w", dir, err)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !allowed[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		out = append(out, filepath.Join(dir, entry.Name()))
	}
	return out, nil
}

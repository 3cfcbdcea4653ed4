package photos

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemStore keeps photos on local disk below baseDir
type FilesystemStore struct {
	baseDir string
}

// NewFilesystemStore creates the base directory if needed
func NewFilesystemStore(baseDir string) (*FilesystemStore, error) {
	if baseDir == "" {
		baseDir = "."
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve photo dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create photo dir: %w", err)
	}
	return &FilesystemStore{baseDir: abs}, nil
}

// BaseDir returns the absolute directory the store serves from
func (s *FilesystemStore) BaseDir() string {
	return s.baseDir
}

// path converts a key to an absolute path and refuses anything that would
// land outside the base directory
func (s *FilesystemStore) path(key string) (string, error) {
	if strings.ContainsRune(key, 0) {
		return "", fmt.Errorf("%w: invalid path", ErrForbidden)
	}
	p := filepath.Join(s.baseDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.baseDir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path outside photo storage", ErrForbidden)
	}
	return p, nil
}

// confined resolves symlinks on an existing path and checks the real
// location is still below the base directory
func (s *FilesystemStore) confined(p string) error {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return err
	}
	base, err := filepath.EvalSymlinks(s.baseDir)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(base, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: path outside photo storage", ErrForbidden)
	}
	return nil
}

func (s *FilesystemStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure photo dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp photo: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write photo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close photo: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod photo: %w", err)
	}
	if err := os.Rename(tmpPath, p); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename photo: %w", err)
	}
	return nil
}

func (s *FilesystemStore) List(ctx context.Context, dir string) ([]string, error) {
	entries, err := s.readDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (s *FilesystemStore) ListDirs(ctx context.Context, dir string) ([]string, error) {
	entries, err := s.readDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (s *FilesystemStore) readDir(dir string) ([]os.DirEntry, error) {
	p, err := s.path(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read photo dir: %w", err)
	}
	return entries, nil
}

func (s *FilesystemStore) Exists(ctx context.Context, key string) (bool, error) {
	p, err := s.path(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat photo: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

func (s *FilesystemStore) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	info, err := os.Lstat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: photo does not exist", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("stat photo: %w", err)
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		if err := s.confined(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: photo does not exist", ErrNotFound)
			}
			return err
		}
		info, err = os.Stat(p)
		if err != nil {
			return fmt.Errorf("stat photo: %w", err)
		}
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: photo does not exist", ErrNotFound)
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}

func (s *FilesystemStore) RemoveAll(ctx context.Context, dir string) (int, error) {
	p, err := s.path(dir)
	if err != nil {
		return 0, err
	}
	if p == s.baseDir {
		return 0, fmt.Errorf("%w: refusing to remove the storage base", ErrForbidden)
	}
	count := 0
	err = filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			count++
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("walk photo dir: %w", err)
	}
	if err := os.RemoveAll(p); err != nil {
		return 0, fmt.Errorf("remove photo dir: %w", err)
	}
	return count, nil
}

func (s *FilesystemStore) Move(ctx context.Context, dir, newDir string) (int, error) {
	src, err := s.path(dir)
	if err != nil {
		return 0, err
	}
	dst, err := s.path(newDir)
	if err != nil {
		return 0, err
	}
	if src == s.baseDir || dst == s.baseDir {
		return 0, fmt.Errorf("%w: refusing to move the storage base", ErrForbidden)
	}
	if src == dst {
		return 0, nil
	}
	if rel, err := filepath.Rel(src, dst); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return 0, fmt.Errorf("%w: cannot move a directory into itself", ErrValidation)
	}

	info, err := os.Lstat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("stat photo dir: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%w: %s is not a directory", ErrValidation, dir)
	}

	var files []string
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk photo dir: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("ensure photo dir: %w", err)
	}
	if _, err := os.Lstat(dst); errors.Is(err, fs.ErrNotExist) {
		if err := os.Rename(src, dst); err != nil {
			return 0, fmt.Errorf("rename photo dir: %w", err)
		}
		return len(files), nil
	}

	// Merge file by file; an existing file of the same name is replaced
	moved := 0
	for _, p := range files {
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return moved, fmt.Errorf("move photo: %w", err)
		}
		target := filepath.Join(dst, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return moved, fmt.Errorf("ensure photo dir: %w", err)
		}
		if err := os.Rename(p, target); err != nil {
			return moved, fmt.Errorf("move photo: %w", err)
		}
		moved++
	}
	if err := os.RemoveAll(src); err != nil {
		return moved, fmt.Errorf("remove photo dir: %w", err)
	}
	return moved, nil
}

var _ Store = (*FilesystemStore)(nil)

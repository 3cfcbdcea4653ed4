package photos

import "context"

// Store is the backing storage for photo files. Keys and directories are
// slash separated paths relative to the store base
type Store interface {
	// Put writes data at key, creating parent directories as needed
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// List returns the names of files directly under dir. A missing
	// directory yields an empty list
	List(ctx context.Context, dir string) ([]string, error)
	// ListDirs returns the names of subdirectories directly under dir
	ListDirs(ctx context.Context, dir string) ([]string, error)
	// Exists reports whether key is a regular file
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes the file at key, returning ErrNotFound if absent
	Delete(ctx context.Context, key string) error
	// RemoveAll deletes dir and everything below it and returns the number
	// of files removed
	RemoveAll(ctx context.Context, dir string) (int, error)
	// Move renames dir to newDir, merging into newDir when it already
	// exists, and returns the number of files moved. A missing dir moves
	// nothing
	Move(ctx context.Context, dir, newDir string) (int, error)
}

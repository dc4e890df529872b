package loader

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FileReader abstracts where dataset files come from.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// FilesystemReader implements FileReader for a directory on disk.
type FilesystemReader struct {
	BasePath string
}

// ReadFile reads path relative to BasePath. Absolute paths are read as is.
func (f *FilesystemReader) ReadFile(path string) ([]byte, error) {
	if filepath.IsAbs(path) {
		return os.ReadFile(path)
	}
	return os.ReadFile(filepath.Join(f.BasePath, path))
}

// FSReader implements FileReader for an fs.FS, e.g. an embed.FS or a
// fstest.MapFS.
type FSReader struct {
	FS fs.FS
}

// ReadFile reads path from the underlying file system.
func (f *FSReader) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(f.FS, filepath.ToSlash(path))
}

package types

import (
	"io/fs"
)

// FS is the filesystem surface used to read targets and write formatted
// rule documents. Tests use an in-memory implementation.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
}

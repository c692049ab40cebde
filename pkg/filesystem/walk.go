package filesystem

import (
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/rulelint/pkg/types"
)

// WalkFunc is called for every entry below the walk root. Returning
// fs.SkipDir for a directory skips its contents.
type WalkFunc func(path string, d fs.DirEntry) error

// Walk visits root and everything below it in lexical order. Unreadable
// subdirectories are reported to onErr and skipped; a nil onErr aborts the
// walk with the error instead.
func Walk(fsys types.FS, root string, fn WalkFunc, onErr func(path string, err error)) error {
	info, err := fsys.Stat(root)
	if err != nil {
		return err
	}
	return walk(fsys, root, fs.FileInfoToDirEntry(info), fn, onErr)
}

func walk(fsys types.FS, path string, d fs.DirEntry, fn WalkFunc, onErr func(string, error)) error {
	if err := fn(path, d); err != nil {
		if err == fs.SkipDir && d.IsDir() {
			return nil
		}
		return err
	}
	if !d.IsDir() {
		return nil
	}

	entries, err := fsys.ReadDir(path)
	if err != nil {
		if onErr == nil {
			return err
		}
		onErr(path, err)
		return nil
	}
	for _, entry := range entries {
		if err := walk(fsys, filepath.Join(path, entry.Name()), entry, fn, onErr); err != nil {
			return err
		}
	}
	return nil
}

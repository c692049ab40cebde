package core

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/rulelint/pkg/errors"
	"github.com/arthur-debert/rulelint/pkg/filesystem"
	"github.com/arthur-debert/rulelint/pkg/pattern"
	"github.com/arthur-debert/rulelint/pkg/types"
)

// targetSpec is a file to evaluate, before its content is read
type targetSpec struct {
	path string
	size int64
}

// ignoreSet is a compiled list of ignore globs
type ignoreSet []*pattern.Glob

func compileIgnores(globs []string) (ignoreSet, error) {
	set := make(ignoreSet, 0, len(globs))
	for _, g := range globs {
		compiled, err := pattern.CompileGlob(g)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid ignore pattern %q", g)
		}
		set = append(set, compiled)
	}
	return set, nil
}

// matches reports whether p is ignored. Directories are also tested with a
// trailing slash so "**/.git/**" prunes the .git directory itself.
func (s ignoreSet) matches(p string, dir bool) bool {
	for _, g := range s {
		if g.Match(p) || (dir && g.Match(p+"/")) {
			return true
		}
	}
	return false
}

// normalizePath gives targets a stable slash separated form
func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// collectTargets expands paths into the sorted, de-duplicated list of files
// to evaluate. Paths that cannot be read become match errors.
func collectTargets(fsys types.FS, paths []string, ignores ignoreSet, logger zerolog.Logger) ([]targetSpec, []error) {
	var (
		specs []targetSpec
		errs  []error
	)
	seen := make(map[string]bool)

	for _, root := range paths {
		err := filesystem.Walk(fsys, root, func(path string, d fs.DirEntry) error {
			p := normalizePath(path)
			// Explicitly named paths are never ignored
			if path != root && ignores.matches(p, d.IsDir()) {
				logger.Trace().Str("path", p).Msg("Ignored")
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if d.Type()&fs.ModeSymlink != 0 {
				// Symlinked directories are not followed
				if info, err := fsys.Stat(path); err == nil && info.IsDir() {
					return nil
				}
			}
			if seen[p] {
				return nil
			}
			seen[p] = true

			var size int64
			if info, err := d.Info(); err == nil {
				size = info.Size()
			}
			specs = append(specs, targetSpec{path: p, size: size})
			return nil
		}, func(path string, err error) {
			errs = append(errs, matchError(normalizePath(path), err))
		})
		if err != nil {
			errs = append(errs, matchError(normalizePath(root), err))
		}
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].path < specs[j].path })
	return specs, errs
}

func matchError(path string, err error) error {
	msg := "cannot read target"
	if stderrors.Is(err, fs.ErrNotExist) {
		msg = "target does not exist"
	}
	return errors.Wrap(err, errors.ErrMatch, msg).At(path, 0)
}

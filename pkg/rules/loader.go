package rules

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/rulelint/pkg/config"
	"github.com/arthur-debert/rulelint/pkg/errors"
	"github.com/arthur-debert/rulelint/pkg/logging"
	"github.com/arthur-debert/rulelint/pkg/pattern"
)

// LoadOptions control which files are rule documents and how they are checked
type LoadOptions struct {
	// Extensions of rule document files, with the leading dot
	Extensions []string
	// DescriptionMax is passed to Parse
	DescriptionMax int
	// Engine is the regex engine name, see pattern.NewCompiler
	Engine string
}

// DefaultLoadOptions returns the options used when no configuration is given
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Extensions:     []string{".mdc", ".md"},
		DescriptionMax: DefaultDescriptionMax,
		Engine:         pattern.EngineRE2,
	}
}

// LoadOptionsFromConfig maps the [rules] and [regex] config sections
func LoadOptionsFromConfig(cfg *config.Config) LoadOptions {
	return LoadOptions{
		Extensions:     cfg.Rules.Extensions,
		DescriptionMax: cfg.Rules.DescriptionMax,
		Engine:         cfg.Regex.Engine,
	}
}

// Load reads every rule document under dir.
//
// A missing directory is returned as ErrRulesDirNotFound with a nil registry.
// Otherwise the registry always holds the documents that loaded cleanly and
// the error, if not nil, is an *errors.List with one entry per problem found:
// ParseErrors and PatternErrors for rejected documents, FileAccess errors
// for unreadable files and DuplicateNameErrors for names declared more than
// once. Documents sharing a name are all rejected.
func Load(ctx context.Context, dir string, opts LoadOptions) (*Registry, error) {
	logger := logging.GetLogger("rules.loader")

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrRulesDirNotFound, "rules directory %s does not exist", dir).
			WithDetail(errors.DetailFile, dir)
	}

	compiler, err := pattern.NewCompiler(opts.Engine)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "cannot create regex compiler")
	}

	files, err := findDocuments(dir, opts.Extensions)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot walk rules directory %s", dir)
	}
	logger.Debug().Str("dir", dir).Int("files", len(files)).Msg("Found rule documents")

	var (
		errs     errors.List
		warnings []Warning
		loaded   []*Rule
	)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rule, w, fileErrs := loadFile(path, compiler, opts)
		warnings = append(warnings, w...)
		if fileErrs.Len() > 0 {
			logger.Debug().Str("file", path).Int("errors", fileErrs.Len()).Msg("Rejected rule document")
			errs.Merge(fileErrs)
			continue
		}
		loaded = append(loaded, rule)
	}

	unique := dropDuplicates(loaded, &errs, logger)
	reg, err := NewRegistry(dir, unique, warnings)
	if err != nil {
		// dropDuplicates leaves no duplicate names
		return nil, errors.Wrap(err, errors.ErrInternal, "registry build failed")
	}

	errs.Sort()
	logger.Info().
		Str("dir", dir).
		Int("rules", reg.Len()).
		Int("errors", errs.Len()).
		Int("warnings", len(warnings)).
		Msg("Rules loaded")
	return reg, errs.ErrorOrNil()
}

func loadFile(path string, compiler *pattern.Compiler, opts LoadOptions) (*Rule, []Warning, *errors.List) {
	errs := &errors.List{}
	data, err := os.ReadFile(path)
	if err != nil {
		errs.Add(errors.Wrapf(err, errors.ErrFileAccess, "cannot read rule document").At(path, 0))
		return nil, nil, errs
	}
	pd := parse(path, data, ParseOptions{DescriptionMax: opts.DescriptionMax})
	if pd.errs.Len() > 0 {
		return nil, pd.warnings, &pd.errs
	}
	rule, cerrs := compile(pd.doc, compiler, pd.lines)
	if cerrs.Len() > 0 {
		return nil, pd.warnings, cerrs
	}
	return rule, pd.warnings, nil
}

func dropDuplicates(loaded []*Rule, errs *errors.List, logger zerolog.Logger) []*Rule {
	paths := make(map[string][]string)
	for _, r := range loaded {
		paths[r.Name()] = append(paths[r.Name()], r.Doc.Path)
	}
	var unique []*Rule
	for _, r := range loaded {
		if len(paths[r.Name()]) == 1 {
			unique = append(unique, r)
		}
	}

	names := make([]string, 0, len(paths))
	for name, p := range paths {
		if len(p) > 1 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		logger.Warn().Str("rule", name).Strs("files", paths[name]).Msg("Duplicate rule name")
		errs.Add(duplicateError(name, paths[name]))
	}
	return unique
}

// findDocuments walks dir in lexical order, skipping hidden directories
func findDocuments(dir string, extensions []string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = DefaultLoadOptions().Extensions
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if hasExtension(d.Name(), extensions) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func hasExtension(name string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

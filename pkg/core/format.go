package core

import (
	"bytes"
	"context"

	"github.com/google/go-cmp/cmp"

	"github.com/arthur-debert/rulelint/pkg/errors"
	"github.com/arthur-debert/rulelint/pkg/filesystem"
	"github.com/arthur-debert/rulelint/pkg/logging"
	"github.com/arthur-debert/rulelint/pkg/rules"
	"github.com/arthur-debert/rulelint/pkg/types"
)

// FormatOptions contains options for re-serializing rule documents
type FormatOptions struct {
	RulesDir string
	Load     rules.LoadOptions
	// Write replaces documents whose canonical form differs
	Write      bool
	FileSystem types.FS
}

// FormatResult describes one loaded document
type FormatResult struct {
	Path string
	// Changed is set when the file differs from its canonical form
	Changed bool
	// Written is set when the canonical form was written back
	Written bool
	// Canonical is the canonical form of the document
	Canonical []byte
}

// Format serializes every loaded document in canonical form and checks
// that the result parses back to the same document. Documents that fail
// to load are left untouched and returned in the error list.
func Format(ctx context.Context, opts FormatOptions) ([]FormatResult, *errors.List, error) {
	logger := logging.GetLogger("core.format")

	fsys := opts.FileSystem
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	reg, loadErrs, err := load(ctx, opts.RulesDir, opts.Load)
	if err != nil {
		return nil, nil, err
	}

	rs := reg.Rules()
	results := make([]FormatResult, 0, len(rs))
	for _, rule := range rs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		doc := rule.Doc

		canonical, err := rules.Marshal(doc)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrInternal, "cannot serialize rule document").At(doc.Path, 0)
		}
		if err := checkRoundTrip(doc, canonical, opts.Load.DescriptionMax); err != nil {
			return nil, nil, err
		}

		current, err := fsys.ReadFile(doc.Path)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read rule document").At(doc.Path, 0)
		}

		res := FormatResult{Path: doc.Path, Canonical: canonical, Changed: !bytes.Equal(current, canonical)}
		if res.Changed && opts.Write {
			info, err := fsys.Stat(doc.Path)
			if err != nil {
				return nil, nil, errors.Wrap(err, errors.ErrFileAccess, "cannot stat rule document").At(doc.Path, 0)
			}
			if err := fsys.WriteFile(doc.Path, canonical, info.Mode().Perm()); err != nil {
				return nil, nil, errors.Wrap(err, errors.ErrFileWrite, "cannot write rule document").At(doc.Path, 0)
			}
			res.Written = true
			logger.Info().Str("file", doc.Path).Msg("Formatted rule document")
		}
		results = append(results, res)
	}
	return results, loadErrs, nil
}

// checkRoundTrip parses canonical and compares it with doc
func checkRoundTrip(doc *types.Document, canonical []byte, descriptionMax int) error {
	again, _, err := rules.Parse(doc.Path, canonical, rules.ParseOptions{DescriptionMax: descriptionMax})
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "canonical form does not parse").At(doc.Path, 0)
	}
	if diff := cmp.Diff(doc, again); diff != "" {
		return errors.Newf(errors.ErrInternal, "canonical form changes the document (-loaded +reparsed):\n%s", diff).
			At(doc.Path, 0)
	}
	return nil
}

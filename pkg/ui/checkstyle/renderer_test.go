package checkstyle

import (
	"bytes"
	"errors"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerrors "github.com/arthur-debert/rulelint/pkg/errors"
	"github.com/arthur-debert/rulelint/pkg/report"
	"github.com/arthur-debert/rulelint/pkg/types"
)

func TestRenderReport(t *testing.T) {
	rep := report.Build([]string{"a.mdc", "b.go"}, []types.MatchResult{
		{Rule: "front_matter", Target: "a.mdc", Matched: true, Findings: []types.Finding{
			{Severity: types.SeverityError, Message: `needs "---" & <rule>`},
			{Severity: types.SeverityInfo, Message: "see docs"},
		}},
	}, []error{lerrors.New(lerrors.ErrMatch, "permission denied").At("b.go", 0)})

	var buf bytes.Buffer
	require.NoError(t, New(&buf).RenderReport(rep))
	assert.Contains(t, buf.String(), `<?xml version="1.0" encoding="UTF-8"?>`)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))
	root := doc.SelectElement("checkstyle")
	require.NotNil(t, root)
	assert.Equal(t, Version, root.SelectAttrValue("version", ""))

	files := root.SelectElements("file")
	require.Len(t, files, 2)
	assert.Equal(t, "a.mdc", files[0].SelectAttrValue("name", ""))

	errs := files[0].SelectElements("error")
	require.Len(t, errs, 2)
	assert.Equal(t, "error", errs[0].SelectAttrValue("severity", ""))
	assert.Equal(t, `needs "---" & <rule>`, errs[0].SelectAttrValue("message", ""))
	assert.Equal(t, "rulelint.front_matter", errs[0].SelectAttrValue("source", ""))
	assert.Equal(t, "info", errs[1].SelectAttrValue("severity", ""))

	assert.Equal(t, "b.go", files[1].SelectAttrValue("name", ""))
	matchErr := files[1].SelectElement("error")
	require.NotNil(t, matchErr)
	assert.Equal(t, "rulelint.match", matchErr.SelectAttrValue("source", ""))
	assert.Equal(t, "permission denied", matchErr.SelectAttrValue("message", ""))
}

func TestRenderIsDeterministic(t *testing.T) {
	rep := report.Build(nil, []types.MatchResult{
		{Rule: "r", Target: "x", Matched: true, Findings: []types.Finding{{Severity: types.SeverityInfo, Message: "m"}}},
	}, nil)

	var a, b bytes.Buffer
	require.NoError(t, New(&a).RenderReport(rep))
	require.NoError(t, New(&b).RenderReport(rep))
	assert.Equal(t, a.String(), b.String())
}

func TestRenderError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf).RenderError(errors.New("boom")))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))
	e := doc.FindElement("//error")
	require.NotNil(t, e)
	assert.Equal(t, "boom", e.SelectAttrValue("message", ""))
}

package json

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rulelint/pkg/report"
	"github.com/arthur-debert/rulelint/pkg/types"
)

func TestRenderReport(t *testing.T) {
	rep := report.Build([]string{"a.mdc"}, []types.MatchResult{
		{Rule: "front_matter", Target: "a.mdc", Matched: true, Findings: []types.Finding{
			{Target: "a.mdc", Rule: "front_matter", Severity: types.SeverityError, Message: "must start with front matter"},
		}},
	}, nil)

	var buf bytes.Buffer
	require.NoError(t, New(&buf).RenderReport(rep))

	var decoded report.Report
	require.NoError(t, stdjson.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *rep, decoded)
	assert.Contains(t, buf.String(), `"severity": "error"`)
	assert.NotContains(t, buf.String(), "matchErrors\": [")
}

func TestRenderEmptyReportHasTargetsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf).RenderReport(report.Build(nil, nil, nil)))
	assert.Contains(t, buf.String(), `"targets": []`)
	assert.Contains(t, buf.String(), `"total": 0`)
}

func TestRenderErrorAndMessage(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	require.NoError(t, r.RenderError(errors.New("boom")))
	require.NoError(t, r.RenderMessage("done"))
	assert.Equal(t, "{\n  \"error\": \"boom\"\n}\n{\n  \"message\": \"done\"\n}\n", buf.String())
}

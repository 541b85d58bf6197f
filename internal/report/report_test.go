package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mikey/mail-insight/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleResult() *core.Result {
	cols := core.NewCollections()
	cols[core.CategoryUrgency] = []core.Projection{
		core.UrgencyProjection{
			Base: core.Base{
				SenderName:   "Ops Team",
				FromAddress:  "ops@example.com",
				DateReceived: "2025-03-03 09:16:00",
				Summary:      "Database failover tonight",
			},
			Urgency: core.UrgencyUrgent,
		},
	}
	cols[core.CategoryRequests] = []core.Projection{
		core.RequestsProjection{Base: core.Base{FromAddress: "boss@example.com", Summary: "Send the Q1 numbers"}},
	}
	return &core.Result{
		RunID:            "run-1",
		Collections:      cols,
		Summary:          cols.Summary(),
		EmailsFetched:    2,
		BatchesTotal:     1,
		BatchesSucceeded: 1,
		StartedAt:        time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
		FinishedAt:       time.Date(2025, 3, 3, 10, 1, 0, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatText, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "Email insight report")
	assert.Contains(t, out, "run run-1")
	assert.Contains(t, out, "URGENCY (1)")
	assert.Contains(t, out, "- Ops Team [2025-03-03 09:16:00]: Database failover tonight")
	assert.Contains(t, out, "- boss@example.com: Send the Q1 numbers")
	assert.NotContains(t, out, "SCHEDULE (")
	assert.NotContains(t, out, "Partial result")
}

func TestRenderTextPartial(t *testing.T) {
	result := sampleResult()
	result.Partial = true
	assert.Contains(t, Text(result), "Partial result")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, sampleResult()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])

	summary := decoded["summary"].(map[string]any)
	assert.EqualValues(t, 1, summary["URGENCY"])
	assert.EqualValues(t, 0, summary["DEADLINES"])
}

func TestRenderYAMLKeepsCategoryOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatYAML, sampleResult()))

	var decoded struct {
		RunID   string         `yaml:"run_id"`
		Summary map[string]int `yaml:"summary"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, 1, decoded.Summary["REQUESTS"])

	out := buf.String()
	assert.Less(t, strings.Index(out, "IMPORTANCE"), strings.Index(out, "DEADLINES"))
}

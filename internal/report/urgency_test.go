package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mikey/mail-insight/internal/urgency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUrgencyReport() urgency.Report {
	return urgency.Report{
		Emails: []urgency.Classification{
			{Subject: "Weekly newsletter", Sender: "news@example.com", Label: urgency.NotUrgent},
			{Subject: "Final notice: invoice 42", Sender: "Billing <billing@example.com>", Date: "2025-03-14 09:30:00", Label: urgency.Urgent},
		},
		Urgent:    1,
		NotUrgent: 1,
	}
}

func TestUrgencyTextListsUrgentFirst(t *testing.T) {
	out := UrgencyText(sampleUrgencyReport())

	urgentAt := strings.Index(out, "Final notice: invoice 42")
	routineAt := strings.Index(out, "Weekly newsletter")
	require.NotEqual(t, -1, urgentAt)
	require.NotEqual(t, -1, routineAt)
	assert.Less(t, urgentAt, routineAt)
	assert.Contains(t, out, "Billing <billing@example.com>")
}

func TestRenderUrgencyJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderUrgency(&buf, FormatJSON, sampleUrgencyReport()))

	var decoded struct {
		Emails []struct {
			Classification string `json:"classification"`
		} `json:"emails"`
		Urgent int `json:"urgent"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1, decoded.Urgent)
	require.Len(t, decoded.Emails, 2)
	assert.Equal(t, urgency.Urgent, decoded.Emails[1].Classification)
}

func TestRenderUrgencyYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderUrgency(&buf, FormatYAML, sampleUrgencyReport()))
	assert.Contains(t, buf.String(), "not_urgent: 1")
}

package core

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func syntheticRecords() []AnalysisRecord {
	return []AnalysisRecord{
		{
			SenderName:  "Alice",
			FromAddress: "alice@example.com",
			DateSent:    "2025-01-02 09:00:00",
			Summary:     "Quarterly report attached",
			Metadata:    Metadata{Importance: ImportanceImportant, Urgency: UrgencyUrgent, Deadline: "2025-01-05"},
			ImportantDates: List[ImportantDate]{
				{Date: "2025-01-05", Type: "deadline", Description: "Report due", Urgency: "high"},
			},
			Entities: Entities{
				Requests:  List[Entry]{Entry(`{"description":"Review the report","urgency":"urgent"}`)},
				Deadlines: List[Entry]{Entry(`{"description":"Report","date":"2025-01-05"}`)},
			},
		},
		{
			SenderName:  "Newsletter",
			FromAddress: "news@example.com",
			Category:    "other",
			Metadata:    Metadata{ContentType: ContentInformational},
		},
		{
			SenderName: "Me",
			SentAnalysis: SentAnalysis{
				IsSentEmail:         true,
				OutboundCommitments: List[Entry]{Entry(`{"commitment":"Send slides","deadline":"2025-01-10"}`)},
				Tone:                Object(`{"overall":"professional"}`),
			},
			DraftReply: DraftReply{Needed: true, Text: "Thanks!"},
		},
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	records := syntheticRecords()
	payload, err := json.Marshal(records)
	require.NoError(t, err)

	for _, raw := range []string{
		string(payload),
		"```json\n" + string(payload) + "\n```",
		"```\n" + string(payload) + "\n```",
		"  ```JSON" + string(payload) + "```  ",
	} {
		decoded, err := NewDecoder(zaptest.NewLogger(t)).Decode(raw)
		require.NoError(t, err)
		if diff := cmp.Diff(records, decoded, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("decoded records mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestDecodeSingleObject(t *testing.T) {
	decoded, err := NewDecoder(zaptest.NewLogger(t)).Decode(`{"sender_name": "Bob", "metadata": {"urgency": "URGENT"}}`)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, Text("Bob"), decoded[0].SenderName)
	assert.Equal(t, Text(UrgencyUrgent), decoded[0].Metadata.Urgency)
}

func TestDecodeEmptyInput(t *testing.T) {
	d := NewDecoder(zaptest.NewLogger(t))
	for _, raw := range []string{"", "   \n", "```json\n```", "```"} {
		decoded, err := d.Decode(raw)
		assert.NoError(t, err, "input %q", raw)
		assert.Empty(t, decoded, "input %q", raw)
	}
}

func TestDecodeMalformedInput(t *testing.T) {
	d := NewDecoder(zaptest.NewLogger(t))
	for _, raw := range []string{
		"I'm sorry, I can't help with that.",
		"[{\"sender_name\": \"truncated",
		"42",
		`"just a string"`,
		"null",
	} {
		decoded, err := d.Decode(raw)
		assert.ErrorIs(t, err, ErrMalformedResponse, "input %q", raw)
		assert.NotNil(t, decoded)
		assert.Empty(t, decoded, "input %q", raw)
	}
}

func TestDecodeSkipsNonObjectElements(t *testing.T) {
	decoded, err := NewDecoder(zaptest.NewLogger(t)).Decode(`[{"sender_name": "A"}, 7, "x", null, {"sender_name": "B"}]`)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, Text("A"), decoded[0].SenderName)
	assert.Equal(t, Text("B"), decoded[1].SenderName)
}

func TestDecodeToleratesMistypedFields(t *testing.T) {
	raw := `{
		"sender_name": null,
		"summary": 12,
		"important_dates": {"date": "2025-02-01"},
		"metadata": "URGENT",
		"sent_analysis": {"is_sent_email": "true", "outbound_commitments": "none", "deliverables_promised": [1, {"deliverable": "doc"}]},
		"entities": {"calendar": null, "requests": [], "spam_analysis": []},
		"draft_reply": []
	}`

	decoded, err := NewDecoder(zaptest.NewLogger(t)).Decode(raw)
	require.NoError(t, err)
	require.Len(t, decoded, 1)

	r := decoded[0]
	assert.Equal(t, Text(""), r.SenderName)
	assert.Equal(t, Text("12"), r.Summary)
	require.Len(t, r.ImportantDates, 1)
	assert.Equal(t, Text("2025-02-01"), r.ImportantDates[0].Date)
	assert.Equal(t, Metadata{}, r.Metadata)
	assert.True(t, bool(r.SentAnalysis.IsSentEmail))
	assert.Empty(t, r.SentAnalysis.OutboundCommitments)
	require.Len(t, r.SentAnalysis.DeliverablesPromised, 2)
	assert.Equal(t, Entry("1"), r.SentAnalysis.DeliverablesPromised[0])
	assert.Empty(t, r.Entities.Calendar)
	assert.Nil(t, r.Entities.SpamAnalysis)
	assert.False(t, bool(r.DraftReply.Needed))
}

func TestDecodeKeepsScalarListElements(t *testing.T) {
	raw := `[{"sender_name":"a","entities":{"requests":["Send the report"],"deadlines":["Friday"]},"important_dates":["2025-01-02"]}]`

	decoded, err := NewDecoder(zaptest.NewLogger(t)).Decode(raw)
	require.NoError(t, err)
	require.Len(t, decoded, 1)

	r := decoded[0]
	assert.Equal(t, List[Entry]{Entry(`"Send the report"`)}, r.Entities.Requests)
	assert.Equal(t, List[Entry]{Entry(`"Friday"`)}, r.Entities.Deadlines)
	require.Len(t, r.ImportantDates, 1)
	assert.Equal(t, Text("2025-01-02"), r.ImportantDates[0].Description)
}

func TestDecodeKeepsRecordWithOutOfRangeNumber(t *testing.T) {
	raw := `[{"sender_name":"a"},{"sender_name":"b","metadata":{"importance":"IMPORTANT"},"entities":{"spam_analysis":{"score":1e999}}}]`

	decoded, err := NewDecoder(zaptest.NewLogger(t)).Decode(raw)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, Text("b"), decoded[1].SenderName)
	assert.JSONEq(t, `{"score":1e999}`, string(decoded[1].Entities.SpamAnalysis))

	cols := Categorize(decoded)
	assert.Len(t, cols[CategoryImportance], 1)
}

func TestStripFence(t *testing.T) {
	cases := map[string]string{
		"```json\n[1]\n```": "[1]",
		"```\n{}\n```":      "{}",
		"[1]":               "[1]",
		"  [1]  ":           "[1]",
		"```json[1]```":     "[1]",
		"```js-on {}```":    "{}",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripFence(in), "input %q", in)
	}
}

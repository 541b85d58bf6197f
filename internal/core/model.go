package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// RawEmail represents a message fetched from the mail source
type RawEmail struct {
	MessageID    string
	SenderName   string
	FromAddress  string
	ToAddress    string
	Subject      string
	DateSent     time.Time
	DateReceived time.Time
	Body         string
	Folder       string
}

// Urgency values emitted by the model in metadata.urgency
const (
	UrgencyUrgent    = "URGENT"
	UrgencyNotUrgent = "NOT_URGENT"
)

// Importance values emitted by the model in metadata.importance
const (
	ImportanceImportant    = "IMPORTANT"
	ImportanceNotImportant = "NOT_IMPORTANT"
)

// Content types emitted by the model in metadata.content_type
const (
	ContentInformational  = "INFORMATIONAL"
	ContentActionable     = "ACTIONABLE"
	ContentTransactional  = "TRANSACTIONAL"
	ContentConversational = "CONVERSATIONAL"
)

// AnalysisRecord is the decoded model output for a single email.
// Every field tolerates absent, null or mistyped values: the model output is untrusted.
type AnalysisRecord struct {
	SenderName     Text                `json:"sender_name"`
	FromAddress    Text                `json:"from_address"`
	DateSent       Text                `json:"date_sent"`
	DateReceived   Text                `json:"date_received"`
	Classification Text                `json:"classification"`
	Category       Text                `json:"category"`
	Summary        Text                `json:"summary"`
	ImportantDates List[ImportantDate] `json:"important_dates"`
	Metadata       Metadata            `json:"metadata"`
	SentAnalysis   SentAnalysis        `json:"sent_analysis"`
	Entities       Entities            `json:"entities"`
	DraftReply     DraftReply          `json:"draft_reply"`
}

// ImportantDate is one entry of the consolidated important_dates list
type ImportantDate struct {
	Date        Text `json:"date"`
	Time        Text `json:"time"`
	Type        Text `json:"type"`
	Description Text `json:"description"`
	Urgency     Text `json:"urgency"`
}

// Metadata holds the three classification dimensions of an email
type Metadata struct {
	Urgency         Text `json:"urgency"`
	Importance      Text `json:"importance"`
	ContentType     Text `json:"content_type"`
	TimeSensitivity Text `json:"time_sensitivity"`
	Deadline        Text `json:"deadline"`
}

// SentAnalysis holds the outbound analysis of an email sent by the mailbox owner
type SentAnalysis struct {
	IsSentEmail          Flag        `json:"is_sent_email"`
	IsSignificant        Flag        `json:"is_significant"`
	SignificanceType     Text        `json:"significance_type"`
	OutboundCommitments  List[Entry] `json:"outbound_commitments"`
	ConfirmationsSent    List[Entry] `json:"confirmations_sent"`
	QuestionsAsked       List[Entry] `json:"questions_asked"`
	DeliverablesPromised List[Entry] `json:"deliverables_promised"`
	NeedsVIPFollowup     Flag        `json:"needs_vip_followup"`
	VIPFollowupReason    Text        `json:"vip_followup_reason"`
	FollowupDate         Text        `json:"followup_date"`
	Tone                 Object      `json:"tone"`
}

// Entities holds the structured items extracted from an email
type Entities struct {
	Requests      List[Entry] `json:"requests"`
	Commitments   List[Entry] `json:"commitments"`
	Calendar      List[Entry] `json:"calendar"`
	Deadlines     List[Entry] `json:"deadlines"`
	Financial     List[Entry] `json:"financial"`
	Reminders     List[Entry] `json:"reminders"`
	TravelChanges List[Entry] `json:"travel_changes"`
	OpenQuestions List[Entry] `json:"open_questions"`
	SpamAnalysis  Object      `json:"spam_analysis"`
	OtherAlerts   List[Entry] `json:"other_alerts"`
}

// DraftReply is the suggested reply for an email
type DraftReply struct {
	Needed Flag `json:"needed"`
	Text   Text `json:"text"`
	Tone   Text `json:"tone"`
}

// UnmarshalJSON decodes a record, rejecting only values that are not JSON objects
func (r *AnalysisRecord) UnmarshalJSON(data []byte) error {
	type plain AnalysisRecord
	if !isObject(data) {
		return fmt.Errorf("analysis record: %w (got %s)", errNotObject, jsonKind(data))
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = AnalysisRecord(p)
	return nil
}

// UnmarshalJSON decodes metadata; a non-object value leaves it empty
func (m *Metadata) UnmarshalJSON(data []byte) error {
	type plain Metadata
	var p plain
	if err := decodeLenientObject(data, &p); err != nil {
		return err
	}
	*m = Metadata(p)
	return nil
}

// UnmarshalJSON decodes the sent analysis; a non-object value leaves it empty
func (s *SentAnalysis) UnmarshalJSON(data []byte) error {
	type plain SentAnalysis
	var p plain
	if err := decodeLenientObject(data, &p); err != nil {
		return err
	}
	*s = SentAnalysis(p)
	return nil
}

// UnmarshalJSON decodes the entities; a non-object value leaves them empty
func (e *Entities) UnmarshalJSON(data []byte) error {
	type plain Entities
	var p plain
	if err := decodeLenientObject(data, &p); err != nil {
		return err
	}
	*e = Entities(p)
	return nil
}

// UnmarshalJSON decodes the draft reply; a non-object value leaves it empty
func (d *DraftReply) UnmarshalJSON(data []byte) error {
	type plain DraftReply
	var p plain
	if err := decodeLenientObject(data, &p); err != nil {
		return err
	}
	*d = DraftReply(p)
	return nil
}

// UnmarshalJSON decodes an important date. A bare string or number becomes the description,
// any other non-object value an empty date, so the element still counts.
func (d *ImportantDate) UnmarshalJSON(data []byte) error {
	type plain ImportantDate
	if !isObject(data) {
		var description Text
		if err := description.UnmarshalJSON(data); err != nil {
			return err
		}
		*d = ImportantDate{Description: description}
		return nil
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = ImportantDate(p)
	return nil
}

// Text is a string field decoded leniently: null becomes empty, numbers and booleans keep their literal text.
// Empty text encodes as null.
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case data[0] == '{' || data[0] == '[':
		*t = ""
	default:
		*t = Text(data)
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (t Text) MarshalJSON() ([]byte, error) {
	if t == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

// Flag is a boolean field decoded leniently from booleans or "true"/"false" strings
type Flag bool

// UnmarshalJSON implements json.Unmarshaler
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")):
		*f = true
	case len(data) > 1 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseBool(s)
		*f = Flag(err == nil && v)
	default:
		*f = false
	}
	return nil
}

// Entry is an opaque JSON list item of any kind, kept as raw JSON and passed through to projections untouched
type Entry json.RawMessage

// UnmarshalJSON implements json.Unmarshaler
func (e *Entry) UnmarshalJSON(data []byte) error {
	*e = append((*e)[:0], bytes.TrimSpace(data)...)
	return nil
}

// MarshalJSON implements json.Marshaler
func (e Entry) MarshalJSON() ([]byte, error) {
	if len(e) == 0 {
		return []byte("null"), nil
	}
	return e, nil
}

// Object is an opaque JSON object field kept as raw JSON; anything but an object decodes to nil
type Object json.RawMessage

// UnmarshalJSON implements json.Unmarshaler
func (o *Object) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		*o = nil
		return nil
	}
	*o = append((*o)[:0], bytes.TrimSpace(data)...)
	return nil
}

// MarshalJSON implements json.Marshaler
func (o Object) MarshalJSON() ([]byte, error) {
	if len(o) == 0 {
		return []byte("null"), nil
	}
	return o, nil
}

// List is a sequence decoded leniently: null or absent is empty, a lone object becomes a
// one-element list and other scalars are empty. Elements that fail to decode are dropped.
// It always encodes as an array.
type List[T any] []T

// UnmarshalJSON implements json.Unmarshaler
func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = List[T]{}
		return nil
	}
	if data[0] != '[' {
		var v T
		if data[0] != '{' || json.Unmarshal(data, &v) != nil {
			*l = List[T]{}
			return nil
		}
		*l = List[T]{v}
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(List[T], 0, len(raw))
	for _, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

// MarshalJSON implements json.Marshaler
func (l List[T]) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]T(l))
}

var errNotObject = errors.New("value is not a JSON object")

func decodeLenientObject(data []byte, v any) error {
	if !isObject(data) {
		return nil
	}
	return json.Unmarshal(data, v)
}

func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}

func jsonKind(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "empty"
	}
	switch data[0] {
	case '[':
		return "array"
	case '"':
		return "string"
	case 'n':
		return "null"
	case 't', 'f':
		return "bool"
	default:
		return "number"
	}
}

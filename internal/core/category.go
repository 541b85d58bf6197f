package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Category identifies one of the result collections an analyzed email can be filed into
type Category int

const (
	CategoryImportance Category = iota
	CategoryUrgency
	CategoryInformational
	CategorySchedule
	CategoryCommitments
	CategoryOutboundCommitments
	CategoryRequests
	CategoryDeadlines

	categoryCount
)

var categoryNames = [categoryCount]string{
	CategoryImportance:          "IMPORTANCE",
	CategoryUrgency:             "URGENCY",
	CategoryInformational:       "INFORMATIONAL",
	CategorySchedule:            "SCHEDULE",
	CategoryCommitments:         "COMMITMENTS",
	CategoryOutboundCommitments: "OUTBOUND_COMMITMENTS",
	CategoryRequests:            "REQUESTS",
	CategoryDeadlines:           "DEADLINES",
}

var categoryDescriptions = [categoryCount]string{
	CategoryImportance:          "Emails tagged as important",
	CategoryUrgency:             "Emails tagged as urgent",
	CategoryInformational:       "News, newsletters, and updates",
	CategorySchedule:            "Emails with calendar events or important dates",
	CategoryCommitments:         "Commitments made by others to you",
	CategoryOutboundCommitments: "Commitments you made to others",
	CategoryRequests:            "Tasks and requests",
	CategoryDeadlines:           "Emails with deadlines",
}

// Categories returns every category in canonical order
func Categories() []Category {
	out := make([]Category, 0, categoryCount)
	for c := Category(0); c < categoryCount; c++ {
		out = append(out, c)
	}
	return out
}

// ParseCategory resolves a category from its name
func ParseCategory(name string) (Category, error) {
	for c, n := range categoryNames {
		if n == name {
			return Category(c), nil
		}
	}
	return 0, fmt.Errorf("unknown category: %q", name)
}

// String returns the category name, e.g. "OUTBOUND_COMMITMENTS"
func (c Category) String() string {
	if !c.valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Description returns a human readable description of the category
func (c Category) Description() string {
	if !c.valid() {
		return ""
	}
	return categoryDescriptions[c]
}

// MarshalText implements encoding.TextMarshaler
func (c Category) MarshalText() ([]byte, error) {
	if !c.valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Category) valid() bool {
	return c >= 0 && c < categoryCount
}

// Collections holds the ordered projections of every category for one run
type Collections map[Category][]Projection

// NewCollections returns collections with every category present and empty
func NewCollections() Collections {
	cols := make(Collections, categoryCount)
	for _, c := range Categories() {
		cols[c] = []Projection{}
	}
	return cols
}

// Merge appends other's projections after the receiver's, per category
func (cols Collections) Merge(other Collections) {
	for _, c := range Categories() {
		if len(other[c]) == 0 {
			continue
		}
		cols[c] = append(cols[c], other[c]...)
	}
}

// Summary returns the number of projections in every category
func (cols Collections) Summary() Summary {
	summary := make(Summary, categoryCount)
	for _, c := range Categories() {
		summary[c] = len(cols[c])
	}
	return summary
}

// MarshalJSON encodes the collections as an object keyed by category name in canonical order
func (cols Collections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range Categories() {
		if i > 0 {
			buf.WriteByte(',')
		}
		items := cols[c]
		if items == nil {
			items = []Projection{}
		}
		value, err := json.Marshal(items)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", c, err)
		}
		fmt.Fprintf(&buf, "%q:", c.String())
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Summary maps every category to the number of emails filed into it
type Summary map[Category]int

// Total returns the sum of all category counts
func (s Summary) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// MarshalJSON encodes the summary in canonical category order
func (s Summary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range Categories() {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:%d", c.String(), s[c])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

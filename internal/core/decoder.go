package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const previewSize = 200

// ErrMalformedResponse wraps every decode failure reported by Decoder.Decode
var ErrMalformedResponse = errors.New("malformed generation response")

// Decoder turns raw generator output into analysis records
type Decoder struct {
	logger *zap.Logger
}

// NewDecoder creates a new response decoder
func NewDecoder(logger *zap.Logger) *Decoder {
	return &Decoder{logger: logger}
}

// Decode parses raw into records. Empty input yields no records and no error.
// A malformed response yields no records and an error wrapping ErrMalformedResponse;
// individual array elements that are not objects are skipped.
func (d *Decoder) Decode(raw string) ([]AnalysisRecord, error) {
	cleaned := StripFence(raw)
	if cleaned == "" {
		return []AnalysisRecord{}, nil
	}

	data := []byte(cleaned)
	if !json.Valid(data) {
		return d.fail(raw, errors.New("invalid JSON"))
	}

	switch data[0] {
	case '{':
		var record AnalysisRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return d.fail(raw, err)
		}
		return []AnalysisRecord{record}, nil

	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return d.fail(raw, err)
		}

		records := make([]AnalysisRecord, 0, len(items))
		for i, item := range items {
			var record AnalysisRecord
			if err := json.Unmarshal(item, &record); err != nil {
				d.logger.Warn("Skipping undecodable analysis record",
					zap.Int("index", i),
					zap.Error(err))
				continue
			}
			records = append(records, record)
		}
		return records, nil

	default:
		return d.fail(raw, fmt.Errorf("top-level value is a %s", jsonKind(data)))
	}
}

func (d *Decoder) fail(raw string, err error) ([]AnalysisRecord, error) {
	err = fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	d.logger.Warn("Failed to parse generation response",
		zap.Error(err),
		zap.String("preview", preview(raw, previewSize)))
	return []AnalysisRecord{}, err
}

// StripFence removes one leading code fence (optionally tagged with a language) and one
// trailing fence, then surrounding whitespace
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = s[3:]
		// The language tag runs up to the first newline or to the start of the JSON value
		if end := strings.IndexAny(s, "\n[{"); end >= 0 {
			tag := s[:end]
			if isFenceTag(tag) {
				s = s[end:]
			}
		} else if isFenceTag(s) {
			s = ""
		}
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isFenceTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, r := range tag {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '+') {
			return false
		}
	}
	return true
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	for !utf8.ValidString(cut) && len(cut) > 0 {
		cut = cut[:len(cut)-1]
	}
	return cut + "..."
}

package urgency

import (
	"regexp"
	"strings"

	"github.com/mikey/mail-insight/internal/core"
	"github.com/mikey/mail-insight/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// Labels assigned by the classifier
const (
	Urgent    = "urgent"
	NotUrgent = "not urgent"
)

// DefaultKeywords is used when no keywords are configured
var DefaultKeywords = []string{
	"urgent", "asap", "immediately", "emergency", "critical",
	"important", "deadline", "time-sensitive", "action required",
	"alert", "warning", "attention needed", "priority", "final notice",
	"payment due", "expires today", "last chance", "respond now",
}

const defaultSnippetSize = 200

// Classification is the label given to one email
type Classification struct {
	Subject string `json:"subject" yaml:"subject"`
	Sender  string `json:"sender" yaml:"sender"`
	Date    string `json:"date" yaml:"date"`
	Snippet string `json:"snippet" yaml:"snippet"`
	Label   string `json:"classification" yaml:"classification"`
}

// Report holds every classification and the label counts
type Report struct {
	Emails    []Classification `json:"emails" yaml:"emails"`
	Urgent    int              `json:"urgent" yaml:"urgent"`
	NotUrgent int              `json:"not_urgent" yaml:"not_urgent"`
}

// Classifier labels emails urgent when a keyword appears as a whole word in the subject or snippet.
// Casers are stateful, so one is created per call.
type Classifier struct {
	pattern     *regexp.Regexp
	processor   *utils.TextProcessor
	snippetSize int
	logger      *zap.Logger
}

// NewClassifier creates a new keyword classifier
func NewClassifier(keywords []string, snippetSize int, processor *utils.TextProcessor, logger *zap.Logger) *Classifier {
	fold := cases.Fold()

	normalized := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		keyword = fold.String(strings.TrimSpace(keyword))
		if keyword != "" {
			normalized = append(normalized, regexp.QuoteMeta(keyword))
		}
	}
	if len(normalized) == 0 {
		for _, keyword := range DefaultKeywords {
			normalized = append(normalized, regexp.QuoteMeta(keyword))
		}
	}
	if snippetSize <= 0 {
		snippetSize = defaultSnippetSize
	}

	logger.Debug("Initialized urgency classifier", zap.Int("keywords", len(normalized)))

	return &Classifier{
		pattern:     regexp.MustCompile(`\b(?:` + strings.Join(normalized, "|") + `)\b`),
		processor:   processor,
		snippetSize: snippetSize,
		logger:      logger,
	}
}

// Classify labels a subject and snippet pair
func (c *Classifier) Classify(subject, snippet string) string {
	content := cases.Fold().String(subject + " " + snippet)
	if c.pattern.MatchString(content) {
		return Urgent
	}
	return NotUrgent
}

// ClassifyAll labels every email, using the start of its body as the snippet
func (c *Classifier) ClassifyAll(emails []core.RawEmail) Report {
	report := Report{Emails: make([]Classification, 0, len(emails))}
	for _, email := range emails {
		snippet := c.processor.Snippet(email.Body, c.snippetSize)
		label := c.Classify(email.Subject, snippet)

		sender := email.FromAddress
		if email.SenderName != "" && email.SenderName != email.FromAddress {
			sender = email.SenderName + " <" + email.FromAddress + ">"
		}
		var date string
		if !email.DateSent.IsZero() {
			date = email.DateSent.Format("2006-01-02 15:04:05")
		}

		report.Emails = append(report.Emails, Classification{
			Subject: email.Subject,
			Sender:  sender,
			Date:    date,
			Snippet: snippet,
			Label:   label,
		})
		if label == Urgent {
			report.Urgent++
		} else {
			report.NotUrgent++
		}
	}

	c.logger.Info("Classified emails",
		zap.Int("urgent", report.Urgent),
		zap.Int("not_urgent", report.NotUrgent))
	return report
}

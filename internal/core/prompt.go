package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	notAvailable = "N/A"
	dateLayout   = "2006-01-02 15:04:05"
)

// BodyProcessor prepares untrusted body text before it is placed in a prompt
type BodyProcessor interface {
	ProcessText(text string, maxSize int) string
}

// PromptRenderer turns a batch of emails into a single generation prompt
type PromptRenderer struct {
	processor    BodyProcessor
	instructions string
	maxBodySize  int
}

// NewPromptRenderer creates a new prompt renderer. An empty instructions string selects AnalysisInstructions.
func NewPromptRenderer(processor BodyProcessor, instructions string, maxBodySize int) *PromptRenderer {
	if instructions == "" {
		instructions = AnalysisInstructions
	}
	return &PromptRenderer{
		processor:    processor,
		instructions: instructions,
		maxBodySize:  maxBodySize,
	}
}

// Render builds the prompt for batch; emails are numbered from 1 within the batch
func (r *PromptRenderer) Render(batch []RawEmail) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze the following batch of %d emails and return a JSON array with the analysis of each email.\n\n", len(batch))
	b.WriteString("EMAILS TO ANALYZE:\n")

	for i, email := range batch {
		n := i + 1
		fmt.Fprintf(&b, "\nEMAIL %d:\n", n)
		fmt.Fprintf(&b, "Sender Name: %s\n", orNA(email.SenderName))
		fmt.Fprintf(&b, "From: %s\n", orNA(email.FromAddress))
		fmt.Fprintf(&b, "To: %s\n", orNA(email.ToAddress))
		fmt.Fprintf(&b, "Subject: %s\n", orNA(oneLine(email.Subject)))
		fmt.Fprintf(&b, "Date Sent: %s\n", formatDate(email.DateSent))
		fmt.Fprintf(&b, "Date Received: %s\n", formatDate(email.DateReceived))
		fmt.Fprintf(&b, "Folder: %s\n", orNA(email.Folder))
		fmt.Fprintf(&b, "<<<EMAIL BODY %d>>>\n", n)
		b.WriteString(orNA(r.body(email.Body)))
		fmt.Fprintf(&b, "\n<<<END EMAIL BODY %d>>>\n", n)
	}

	b.WriteString("\nANALYSIS INSTRUCTIONS:\n")
	b.WriteString(r.instructions)

	b.WriteString("\nRULES:\n")
	fmt.Fprintf(&b, "- Return a JSON array with exactly one object per email, in input order (total: %d objects)\n", len(batch))
	b.WriteString("- Do not skip any emails\n")
	b.WriteString("- Follow the exact JSON format specified above\n")
	b.WriteString("- Return ONLY valid JSON, no markdown fencing\n")

	return b.String()
}

// body prepares body text and neutralizes copies of the delimiter markers it may contain
func (r *PromptRenderer) body(text string) string {
	if r.processor != nil {
		text = r.processor.ProcessText(text, r.maxBodySize)
	}
	text = strings.ReplaceAll(text, "<<<", "< < <")
	return text
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return notAvailable
	}
	return t.Format(dateLayout)
}

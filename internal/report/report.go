package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mikey/mail-insight/internal/core"
	"gopkg.in/yaml.v3"
)

// Format selects how a result is rendered
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported report format %q (want text, json or yaml)", name)
	}
}

var (
	colorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	colorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	colorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	colorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	itemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

// Render writes result to w in the given format
func Render(w io.Writer, format Format, result *core.Result) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatYAML:
		return renderYAML(w, result)
	case FormatText, "":
		_, err := io.WriteString(w, Text(result))
		return err
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderYAML goes through the JSON encoding so category ordering and field names match the JSON output
func renderYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("converting result: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

// Text returns the human readable report
func Text(result *core.Result) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Email insight report"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("run %s, %s", result.RunID, result.FinishedAt.Format("2006-01-02 15:04:05"))))
	b.WriteString("\n")
	if result.Partial {
		b.WriteString(warnStyle.Render("Partial result: the run was aborted before every batch was analyzed"))
		b.WriteString("\n")
	}

	var counts strings.Builder
	fmt.Fprintf(&counts, "Emails fetched: %d\n", result.EmailsFetched)
	fmt.Fprintf(&counts, "Batches: %d of %d succeeded", result.BatchesSucceeded, result.BatchesTotal)
	if result.BatchesFailed > 0 {
		fmt.Fprintf(&counts, ", %d failed", result.BatchesFailed)
	}
	for _, c := range core.Categories() {
		fmt.Fprintf(&counts, "\n%-21s %d", c.String(), result.Summary[c])
	}
	b.WriteString(summaryStyle.Render(counts.String()))
	b.WriteString("\n")

	for _, c := range core.Categories() {
		items := result.Collections[c]
		if len(items) == 0 {
			continue
		}
		b.WriteString(sectionStyle.Render(fmt.Sprintf("%s (%d)", c.String(), len(items))))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(c.Description()))
		b.WriteString("\n")
		for _, p := range items {
			b.WriteString(itemStyle.Render(itemLine(p)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func itemLine(p core.Projection) string {
	id := p.Identity()
	sender := string(id.SenderName)
	if sender == "" {
		sender = string(id.FromAddress)
	}
	if sender == "" {
		sender = "unknown sender"
	}

	var line bytes.Buffer
	line.WriteString("- ")
	line.WriteString(sender)
	if id.DateReceived != "" {
		fmt.Fprintf(&line, " [%s]", id.DateReceived)
	}
	if id.Summary != "" {
		line.WriteString(": ")
		line.WriteString(string(id.Summary))
	}
	return line.String()
}

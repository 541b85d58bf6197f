package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mikey/mail-insight/internal/urgency"
)

var urgentStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}).
	Bold(true)

// RenderUrgency writes a keyword classification report to w in the given format
func RenderUrgency(w io.Writer, format Format, rep urgency.Report) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, rep)
	case FormatYAML:
		return renderYAML(w, rep)
	case FormatText, "":
		_, err := io.WriteString(w, UrgencyText(rep))
		return err
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

// UrgencyText returns the human readable classification report, urgent emails first
func UrgencyText(rep urgency.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Urgency classification"))
	b.WriteString("\n")
	b.WriteString(summaryStyle.Render(fmt.Sprintf("Urgent:     %d\nNot urgent: %d", rep.Urgent, rep.NotUrgent)))
	b.WriteString("\n")

	for _, label := range []string{urgency.Urgent, urgency.NotUrgent} {
		first := true
		for _, email := range rep.Emails {
			if email.Label != label {
				continue
			}
			if first {
				b.WriteString(sectionStyle.Render(strings.ToUpper(label)))
				b.WriteString("\n")
				first = false
			}
			line := "- " + email.Subject
			if label == urgency.Urgent {
				line = urgentStyle.Render(line)
			}
			b.WriteString(itemStyle.Render(line))
			b.WriteString("\n")
			b.WriteString(itemStyle.Render(mutedStyle.Render(fmt.Sprintf("  %s %s", email.Sender, email.Date))))
			b.WriteString("\n")
		}
	}
	return b.String()
}

package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/vburojevic/obcall/internal/deploy"
	"github.com/vburojevic/obcall/internal/domain"
)

// TextWriter renders human-readable output.
type TextWriter struct {
	w     io.Writer
	title lipgloss.Style
	ok    lipgloss.Style
	bad   lipgloss.Style
}

// NewTextWriter creates a writer over w. Styling is dropped when w is not
// a terminal.
func NewTextWriter(w io.Writer) *TextWriter {
	r := lipgloss.NewRenderer(w)
	return &TextWriter{
		w:     w,
		title: r.NewStyle().Bold(true),
		ok:    r.NewStyle().Foreground(lipgloss.Color("2")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// WriteRecord prints a headline and the status fields as a table.
func (t *TextWriter) WriteRecord(headline string, rec *domain.Record) error {
	if headline != "" {
		fmt.Fprintln(t.w, t.title.Render(headline))
	}
	table := tablewriter.NewWriter(t.w)
	table.Header("Name", "Value")
	rows := lo.Map(rec.Fields, func(f domain.Field, _ int) []string {
		return []string{f.Name, f.Value}
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// WriteContact prints the provider's contact detail; timestamps use tf.
func (t *TextWriter) WriteContact(contact domain.Contact, tf domain.TimeFormat) error {
	stamp := func(ts *time.Time) string {
		if ts == nil {
			return ""
		}
		return tf.Format(*ts)
	}
	rows := [][]string{
		{"ContactId", contact.ContactID},
		{"InitiationTimestamp", stamp(contact.InitiationTime)},
		{"ConnectedToSystemTimestamp", stamp(contact.SystemConnectTime)},
		{"ConnectedToAgentTimestamp", stamp(contact.AgentConnectTime)},
		{"DisconnectTimestamp", stamp(contact.DisconnectTime)},
		{"DisconnectReason", contact.DisconnectReason},
		{"DetectionResult", contact.DetectionResult},
	}
	fmt.Fprintln(t.w, t.title.Render("Provider contact"))
	table := tablewriter.NewWriter(t.w)
	table.Header("Name", "Value")
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// WriteSuccess prints a success line.
func (t *TextWriter) WriteSuccess(message string) {
	fmt.Fprintln(t.w, t.ok.Render(message))
}

// WriteFailure prints a failure line.
func (t *TextWriter) WriteFailure(message string) {
	fmt.Fprintln(t.w, t.bad.Render(message))
}

// WriteArtifacts prints one line per artifact.
func (t *TextWriter) WriteArtifacts(artifacts []deploy.ArtifactStatus) {
	for _, a := range artifacts {
		if a.Exists {
			fmt.Fprintln(t.w, t.ok.Render("✓ "+a.Name))
		} else {
			fmt.Fprintln(t.w, t.bad.Render("✗ "+a.Name+" - file not found"))
		}
	}
}

// WriteDeploy prints a deployment outcome with its captured output.
func (t *TextWriter) WriteDeploy(res deploy.Result) {
	if res.Success {
		t.WriteSuccess("Deployment succeeded")
		if out := strings.TrimSpace(res.Stdout); out != "" {
			fmt.Fprintln(t.w, out)
		}
		return
	}
	t.WriteFailure("Deployment failed")
	if out := strings.TrimSpace(res.Stderr); out != "" {
		fmt.Fprintln(t.w, out)
	}
}

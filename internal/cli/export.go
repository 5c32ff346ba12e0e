package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vburojevic/obcall/internal/call"
	"github.com/vburojevic/obcall/internal/export"
	"github.com/vburojevic/obcall/internal/output"
)

// ExportCmd writes the active session as a CSV file.
type ExportCmd struct {
	Output string `short:"o" help:"Output path; '-' writes CSV to stdout (default contact_<id>.csv)"`
}

// Run executes the export command
func (c *ExportCmd) Run(globals *Globals) error {
	toStdout := c.Output == "-"
	if err := validateFlags(globals, toStdout); err != nil {
		return err
	}

	svc, err := globals.newService(context.Background(), call.InitiatorOptions{})
	if err != nil {
		return outputDomainError(globals, err)
	}
	data, rec, err := svc.Export()
	if err != nil {
		return outputDomainError(globals, err)
	}

	if toStdout {
		_, err := globals.Stdout.Write(data)
		return err
	}

	path := c.Output
	if path == "" {
		path = export.Filename(rec)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return outputErrorCommon(globals, "EXPORT_FAILED", err.Error())
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return outputErrorCommon(globals, "EXPORT_FAILED", err.Error())
	}

	rows := len(rec.Fields)
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteExport(path, rows)
	}
	if !globals.Quiet {
		output.NewTextWriter(globals.Stdout).WriteSuccess(fmt.Sprintf("Exported %d fields to %s", rows, path))
	}
	return nil
}

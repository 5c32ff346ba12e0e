package cli

import (
	"encoding/json"
	"fmt"

	"github.com/vburojevic/obcall/internal/output"
)

// VersionCmd prints build information.
type VersionCmd struct{}

// VersionOutput represents the NDJSON output for the version command
type VersionOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	GoInstall     string `json:"go_install"`
}

const goInstallCmd = "go install github.com/vburojevic/obcall/cmd/obcall@latest"

// Run executes the version command
func (c *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		return json.NewEncoder(globals.Stdout).Encode(VersionOutput{
			Type:          "version",
			SchemaVersion: output.SchemaVersion,
			Version:       Version,
			Commit:        Commit,
			GoInstall:     goInstallCmd,
		})
	}
	fmt.Fprintf(globals.Stdout, "obcall %s (%s)\n", Version, Commit)
	fmt.Fprintln(globals.Stdout)
	fmt.Fprintln(globals.Stdout, "To upgrade:")
	fmt.Fprintf(globals.Stdout, "  %s\n", goInstallCmd)
	return nil
}

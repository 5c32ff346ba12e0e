package cli

import (
	"encoding/json"
	"fmt"

	"github.com/vburojevic/obcall/internal/config"
	"github.com/vburojevic/obcall/internal/output"
)

// ConfigCmd groups configuration subcommands.
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"1" help:"Show the effective configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show which config file is loaded"`
	Generate ConfigGenerateCmd `cmd:"" help:"Print a sample config file"`
}

// ConfigShowCmd prints the effective configuration.
type ConfigShowCmd struct{}

// ConfigOutput is the NDJSON form of the effective configuration.
type ConfigOutput struct {
	Type          string `json:"type"` // "config"
	SchemaVersion int    `json:"schemaVersion"`
	File          string `json:"file,omitempty"`
	*config.Config
}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.cfg()
	if globals.Format == "ndjson" {
		return json.NewEncoder(globals.Stdout).Encode(ConfigOutput{
			Type:          "config",
			SchemaVersion: output.SchemaVersion,
			File:          config.ConfigFile(),
			Config:        cfg,
		})
	}

	w := globals.Stdout
	fmt.Fprintln(w, "Current Configuration:")
	if path := config.ConfigFile(); path != "" {
		fmt.Fprintf(w, "  file:      %s\n", path)
	}
	fmt.Fprintf(w, "  format:    %s\n", cfg.Format)
	fmt.Fprintf(w, "  provider:  %s\n", cfg.Provider)
	fmt.Fprintf(w, "  timezone:  %s\n", cfg.Timezone)
	fmt.Fprintln(w, "Connect:")
	fmt.Fprintf(w, "  region:       %s\n", cfg.Connect.Region)
	fmt.Fprintf(w, "  instance_id:  %s\n", cfg.Connect.InstanceID)
	fmt.Fprintf(w, "  flow_id:      %s\n", cfg.Connect.FlowID)
	fmt.Fprintf(w, "  caller_label: %s\n", cfg.Connect.CallerLabel)
	fmt.Fprintln(w, "Phone:")
	fmt.Fprintf(w, "  policy: %s\n", cfg.Phone.Policy)
	fmt.Fprintln(w, "Timeouts:")
	fmt.Fprintf(w, "  initiate: %s\n", cfg.Timeouts.Initiate)
	fmt.Fprintf(w, "  describe: %s\n", cfg.Timeouts.Describe)
	fmt.Fprintf(w, "  prompt:   %s\n", cfg.Timeouts.Prompt)
	return nil
}

// ConfigPathCmd shows which config file would be loaded.
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()
	if globals.Format == "ndjson" {
		return json.NewEncoder(globals.Stdout).Encode(map[string]interface{}{
			"type":          "config_path",
			"schemaVersion": output.SchemaVersion,
			"path":          path,
		})
	}
	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found (searched .obcallrc and obcall.yaml)")
		return nil
	}
	fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	return nil
}

// ConfigGenerateCmd prints a sample configuration file.
type ConfigGenerateCmd struct{}

const sampleConfig = `# obcall configuration file
# Place at ~/.obcallrc, ./.obcallrc or ./obcall.yaml

format: auto
timezone: local         # local, utc or an IANA zone such as Asia/Shanghai
provider: connect       # connect or dev

connect:
  region: us-east-1
  instance_id: ""
  flow_id: ""
  source_number: ""
  caller_label: ""
  detection_attribute: amd_result
  attributes:
    - LanguageCode=zh_CN

phone:
  policy: e164          # e164, exact or max
  length: 0

timeouts:
  initiate: 10s
  describe: 10s
  prompt: 30s           # lambda environment read + update

watch:
  interval: 5s
  max_polls: 0

prompt:
  lambda_arn: ""
  env_var: Prompt

deploy:
  stack_name: VoiceOutboundStack
  template_dir: .
  artifacts_dir: .
  binary: cdk
`

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	fmt.Fprint(globals.Stdout, sampleConfig)
	return nil
}

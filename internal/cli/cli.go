package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/benbjohnson/clock"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/vburojevic/obcall/internal/config"
	"github.com/vburojevic/obcall/internal/deploy"
	"github.com/vburojevic/obcall/internal/domain"
	"github.com/vburojevic/obcall/internal/output"
	"github.com/vburojevic/obcall/internal/provider"
)

// Build info, set via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
)

// CLI is the root command tree.
type CLI struct {
	Format    string `short:"f" default:"${config_format}" enum:"auto,text,ndjson" help:"Output format (auto picks text on a terminal)"`
	Quiet     bool   `short:"q" help:"Suppress informational output"`
	Verbose   bool   `short:"v" help:"Emit JSON debug logs to stderr"`
	Provider  string `default:"${config_provider}" enum:"connect,dev" help:"Contact-center backend (dev simulates calls locally)"`
	StateFile string `default:"${config_state_file}" help:"Session state file (default ~/.obcall/session.json)"`

	Call    CallCmd    `cmd:"" help:"Place an outbound call and make it the active session"`
	Refresh RefreshCmd `cmd:"" help:"Reconcile the active session with the provider"`
	Watch   WatchCmd   `cmd:"" help:"Poll the active session until the call ends"`
	Show    ShowCmd    `cmd:"" help:"Print the active session without contacting the provider"`
	Export  ExportCmd  `cmd:"" help:"Export the active session as CSV"`
	Prompt  PromptCmd  `cmd:"" help:"Manage the bot prompt of the call handler"`
	Deploy  DeployCmd  `cmd:"" help:"Check and deploy the supporting infrastructure"`
	Config  ConfigCmd  `cmd:"" help:"Inspect configuration"`
	Schema  SchemaCmd  `cmd:"" help:"Print JSON Schema for NDJSON output"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// Globals carries resolved global flags and shared dependencies to commands.
type Globals struct {
	Format    string
	Quiet     bool
	Verbose   bool
	Provider  string
	StateFile string
	Stdout    io.Writer
	Stderr    io.Writer
	Config    *config.Config

	// Test seams; nil uses the real implementation.
	clock          clock.Clock
	client         provider.Client
	promptSetter   variableSetter
	deployExecutor deploy.Executor
	logger         *zap.SugaredLogger
}

// NewGlobalsWithConfig resolves parsed flags against loaded configuration.
func NewGlobalsWithConfig(c *CLI, cfg *config.Config) *Globals {
	if cfg == nil {
		cfg = config.Default()
	}
	g := &Globals{
		Format:    c.Format,
		Quiet:     c.Quiet || cfg.Quiet,
		Verbose:   c.Verbose || cfg.Verbose,
		Provider:  c.Provider,
		StateFile: c.StateFile,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Config:    cfg,
	}
	g.Format = resolveFormat(g.Format, g.Stdout)
	return g
}

// resolveFormat maps "auto" to text on a terminal and ndjson otherwise.
func resolveFormat(format string, w io.Writer) string {
	if format != "auto" && format != "" {
		return format
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return "text"
	}
	return "ndjson"
}

func (g *Globals) cfg() *config.Config {
	if g.Config == nil {
		g.Config = config.Default()
	}
	return g.Config
}

func (g *Globals) now() clock.Clock {
	if g.clock == nil {
		g.clock = clock.New()
	}
	return g.clock
}

// Warn prints a warning; warnings are shown even when quiet.
func (g *Globals) Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if g.Format == "ndjson" {
		output.NewNDJSONWriter(g.Stdout).WriteWarning(msg)
		return
	}
	fmt.Fprintf(g.Stderr, "Warning: %s\n", msg)
}

// emitRecord writes a record snapshot in the selected format.
func (g *Globals) emitRecord(event, headline string, rec *domain.Record) error {
	if g.Format == "ndjson" {
		return output.NewNDJSONWriter(g.Stdout).WriteRecord(event, rec)
	}
	if g.Quiet {
		headline = ""
	}
	return output.NewTextWriter(g.Stdout).WriteRecord(headline, rec)
}

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format    string `mapstructure:"format"`
	Quiet     bool   `mapstructure:"quiet"`
	Verbose   bool   `mapstructure:"verbose"`
	Timezone  string `mapstructure:"timezone"`   // local, utc or an IANA zone
	StateFile string `mapstructure:"state_file"` // Empty uses ~/.obcall/session.json
	Provider  string `mapstructure:"provider"`   // connect or dev

	Connect  ConnectConfig  `mapstructure:"connect"`
	Phone    PhoneConfig    `mapstructure:"phone"`
	Timeouts TimeoutsConfig `mapstructure:"timeouts"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Prompt   PromptConfig   `mapstructure:"prompt"`
	Deploy   DeployConfig   `mapstructure:"deploy"`
}

// ConnectConfig holds contact-center defaults for the call command
type ConnectConfig struct {
	Region             string   `mapstructure:"region"`
	InstanceID         string   `mapstructure:"instance_id"`
	FlowID             string   `mapstructure:"flow_id"`
	SourceNumber       string   `mapstructure:"source_number"`
	CallerLabel        string   `mapstructure:"caller_label"`
	Attributes         []string `mapstructure:"attributes"` // KEY=VALUE pairs, key case preserved
	DetectionAttribute string   `mapstructure:"detection_attribute"`
}

// PhoneConfig selects the destination number validator
type PhoneConfig struct {
	Policy string `mapstructure:"policy"` // exact, max or e164
	Length int    `mapstructure:"length"`
}

// TimeoutsConfig bounds remote requests
type TimeoutsConfig struct {
	Initiate string `mapstructure:"initiate"`
	Describe string `mapstructure:"describe"`
	Prompt   string `mapstructure:"prompt"` // Whole read-modify-write of the handler environment
}

// WatchConfig holds polling defaults
type WatchConfig struct {
	Interval string `mapstructure:"interval"`
	MaxPolls int    `mapstructure:"max_polls"`
}

// PromptConfig points at the call handler whose prompt can be updated
type PromptConfig struct {
	LambdaARN string `mapstructure:"lambda_arn"`
	EnvVar    string `mapstructure:"env_var"`
}

// DeployConfig holds infrastructure deployment defaults
type DeployConfig struct {
	StackName    string   `mapstructure:"stack_name"`
	TemplateDir  string   `mapstructure:"template_dir"`
	ArtifactsDir string   `mapstructure:"artifacts_dir"`
	Artifacts    []string `mapstructure:"artifacts"`
	Profile      string   `mapstructure:"profile"`
	Binary       string   `mapstructure:"binary"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:   "auto",
		Quiet:    false,
		Verbose:  false,
		Timezone: "local",
		Provider: "connect",
		Connect: ConnectConfig{
			Region:             "us-east-1",
			DetectionAttribute: "amd_result",
		},
		Phone: PhoneConfig{
			Policy: "e164",
		},
		Timeouts: TimeoutsConfig{
			Initiate: "10s",
			Describe: "10s",
			Prompt:   "30s",
		},
		Watch: WatchConfig{
			Interval: "5s",
		},
		Prompt: PromptConfig{
			EnvVar: "Prompt",
		},
		Deploy: DeployConfig{
			StackName:    "VoiceOutboundStack",
			TemplateDir:  ".",
			ArtifactsDir: ".",
			Binary:       "cdk",
		},
	}
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	v := viper.New()

	// Search paths, lowest precedence first
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/obcall/")
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "obcall"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigName(".obcallrc")

	// Environment variables
	v.SetEnvPrefix("OBCALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.BindEnv("format", "OBCALL_FORMAT")
	v.BindEnv("verbose", "OBCALL_VERBOSE")
	v.BindEnv("timezone", "OBCALL_TIMEZONE")
	v.BindEnv("connect.region", "OBCALL_REGION", "AWS_REGION")
	v.BindEnv("connect.instance_id", "OBCALL_INSTANCE_ID")
	v.BindEnv("connect.flow_id", "OBCALL_FLOW_ID")
	v.BindEnv("connect.source_number", "OBCALL_SOURCE_NUMBER")

	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Try obcall.yaml before falling back to defaults
		v.SetConfigName("obcall")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigFile returns the path to the config file that would be loaded
func ConfigFile() string {
	v := viper.New()
	v.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")

	for _, name := range []string{".obcallrc", "obcall"} {
		v.SetConfigName(name)
		if err := v.ReadInConfig(); err == nil {
			return v.ConfigFileUsed()
		}
	}

	return ""
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("format", cfg.Format)
	v.SetDefault("quiet", cfg.Quiet)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("timezone", cfg.Timezone)
	v.SetDefault("provider", cfg.Provider)
	v.SetDefault("connect.region", cfg.Connect.Region)
	v.SetDefault("connect.detection_attribute", cfg.Connect.DetectionAttribute)
	v.SetDefault("phone.policy", cfg.Phone.Policy)
	v.SetDefault("timeouts.initiate", cfg.Timeouts.Initiate)
	v.SetDefault("timeouts.describe", cfg.Timeouts.Describe)
	v.SetDefault("timeouts.prompt", cfg.Timeouts.Prompt)
	v.SetDefault("watch.interval", cfg.Watch.Interval)
	v.SetDefault("prompt.env_var", cfg.Prompt.EnvVar)
	v.SetDefault("deploy.stack_name", cfg.Deploy.StackName)
	v.SetDefault("deploy.template_dir", cfg.Deploy.TemplateDir)
	v.SetDefault("deploy.artifacts_dir", cfg.Deploy.ArtifactsDir)
	v.SetDefault("deploy.binary", cfg.Deploy.Binary)
}

package commands

import (
	"log/slog"
	"os"

	"github.com/leapstack-labs/modelspec/internal/cli/config"
	"github.com/leapstack-labs/modelspec/internal/cli/output"
	"github.com/leapstack-labs/modelspec/internal/document"
	"github.com/leapstack-labs/modelspec/internal/state"
	"github.com/leapstack-labs/modelspec/pkg/validate"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Validator returns a validator using the configured policy.
func (c *CommandContext) Validator() *validate.Validator {
	return validate.New(validate.Config{
		Policy: c.Cfg.ValidationPolicy(),
		Logger: c.Logger,
	})
}

// Loader returns a document loader.
func (c *CommandContext) Loader() *document.Loader {
	return document.NewLoader(c.Logger)
}

// OpenStore opens the history database. The caller must close it.
func (c *CommandContext) OpenStore() (*state.SQLiteStore, error) {
	return state.OpenStore(c.Cfg.StatePath, c.Logger)
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		Policy:       getEnvOrDefault("MODELSPEC_POLICY", config.DefaultPolicy),
		OutputFormat: getEnvOrDefault("MODELSPEC_OUTPUT", config.DefaultOutput),
		StatePath:    getEnvOrDefault("MODELSPEC_STATE_PATH", config.DefaultStateFile),
		Record:       os.Getenv("MODELSPEC_RECORD") == "true",
		Verbose:      os.Getenv("MODELSPEC_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

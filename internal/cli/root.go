package cli

import (
	"fmt"

	"github.com/dshills/termexplain/internal/config"
	"github.com/dshills/termexplain/internal/logging"
	"github.com/dshills/termexplain/internal/providers"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

// Global flags
var (
	flagLogLevel string
	flagDebug    bool
	flagCacheDir string
	flagProvider string
	flagModel    string
	flagAPIKey   string
)

// logger is configured by the root command before any command runs.
var logger = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "termexplain [ERROR_TEXT...]",
	Short: "Explain terminal errors using AI",
	Long: `termexplain explains terminal errors in plain English using an LLM provider.

Provide the error text as arguments, pipe it via stdin, or run a file with --file.
Explanations can be cached on disk with --save and are reused until they expire.`,
	Example: `  termexplain "ModuleNotFoundError: No module named 'requests'"
  cat error.log | termexplain
  termexplain --save "Permission denied"
  termexplain --file my_script.py`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: setupLogging,
	RunE:              runExplain,
}

// Run executes the root command and returns an exit code.
func Run() int {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print termexplain version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "termexplain version %s\n", version)
	},
}

// buildOverrides maps global flags onto config keys. Only flags that were
// set produce entries.
func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagPlain {
		m["format"] = "plain"
	}
	if flagCacheDir != "" {
		m["cache.dir"] = flagCacheDir
	}
	if flagLogLevel != "" {
		m["log.level"] = flagLogLevel
	}
	if flagDebug {
		m["log.level"] = "debug"
	}
	return m
}

// loadConfig loads the effective configuration. An unset model resolves to
// the default model of the selected provider.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return cfg, err
	}
	if cfg.Model == "" {
		cfg.Model = providers.DefaultModel(cfg.Provider)
	}
	return cfg, nil
}

func setupLogging(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		// Commands report the config error themselves; log with defaults.
		cfg = config.Default()
	}
	logger = logging.New(logging.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	}, cmd.ErrOrStderr())
	if err != nil {
		logger.Warn().Err(err).Msg("invalid configuration")
	}
	return nil
}

// fail reports a runtime error on stderr and records the exit code.
func fail(cmd *cobra.Command, code int, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: "+format+"\n", args...)
	exitCode = code
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.BoolVar(&flagDebug, "debug", false, "Shorthand for --log-level debug")
	pf.StringVar(&flagCacheDir, "cache-dir", "", "Cache directory (default: history)")
	pf.StringVar(&flagProvider, "provider", "", "LLM provider (gemini, anthropic, openai, ollama)")
	pf.StringVar(&flagModel, "model", "", "Model name")
	pf.StringVar(&flagAPIKey, "api-key", "", "API key for the provider (default: provider environment variable)")

	addExplainFlags(rootCmd)

	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(versionCmd)
}

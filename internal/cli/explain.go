package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dshills/termexplain/internal/cache"
	"github.com/dshills/termexplain/internal/config"
	"github.com/dshills/termexplain/internal/explain"
	"github.com/dshills/termexplain/internal/output"
	"github.com/dshills/termexplain/internal/providers"
	"github.com/dshills/termexplain/internal/runner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Explain flags
var (
	flagSave     bool
	flagNoCache  bool
	flagFile     string
	flagFormat   string
	flagPlain    bool
	flagOut      string
	flagNoRedact bool
)

// newProvider creates the provider for a cache miss. Tests replace it.
var newProvider = func(cfg config.Config) (providers.Explainer, error) {
	return providers.New(cfg.Provider, cfg.Model, flagAPIKey)
}

func addExplainFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagSave, "save", false, "Cache the explanation for future use")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Skip the cache and always fetch a fresh explanation")
	cmd.Flags().StringVar(&flagFile, "file", "", "Run a Python or JavaScript file and explain any errors")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (pretty, plain, markdown, json)")
	cmd.Flags().BoolVar(&flagPlain, "plain", false, "Shorthand for --format plain")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret and home path redaction (use with caution)")
}

func runExplain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := output.GetWriter(cfg.Format); err != nil {
		return err
	}
	if flagNoRedact {
		cfg.Privacy.RedactSecrets = false
		cfg.Privacy.RedactHome = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var text string
	if flagFile != "" {
		var done bool
		text, done = runFile(ctx, cmd, flagFile, cfg)
		if done {
			return nil
		}
	} else {
		text, err = resolveInput(cmd, args)
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(text) == "" {
		return explain.ErrEmptyInput
	}

	var c *cache.Cache
	if cfg.Cache.Enabled {
		c, err = openCache(cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("cache unavailable, continuing without it")
			c = nil
		}
	}

	engineOpts := []explain.Option{explain.WithLogger(logger)}
	if home, err := os.UserHomeDir(); err == nil {
		engineOpts = append(engineOpts, explain.WithHomeDir(home))
	}
	engine := explain.New(cfg, c, func() (providers.Explainer, error) {
		return newProvider(cfg)
	}, engineOpts...)

	if isTerminal(cmd.ErrOrStderr()) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Analyzing error...")
	}
	res, err := engine.Explain(ctx, text, explain.Options{NoCache: flagNoCache, Save: flagSave})
	if err != nil {
		code := ExitRuntimeError
		if providers.IsAuthError(err) {
			code = ExitAuthError
		}
		fail(cmd, code, "%v", err)
		return nil
	}

	e := &output.Explanation{
		ErrorText:   res.ErrorText,
		Explanation: res.Explanation,
		Cached:      res.Cached,
		Saved:       res.Saved,
		Provider:    res.Provider,
		Model:       res.Model,
		TokensUsed:  res.TokensUsed,
	}
	if err := writeExplanation(cmd, e, cfg.Format); err != nil {
		fail(cmd, ExitRuntimeError, "writing output: %v", err)
		return nil
	}
	logger.Debug().Bool("cached", res.Cached).Dur("elapsed", res.Duration).Msg("explained error")
	return nil
}

// runFile executes path and returns the text to explain. done is true when
// there is nothing to explain, either because the run succeeded or because
// it could not be started (in which case exitCode is set).
func runFile(ctx context.Context, cmd *cobra.Command, path string, cfg config.Config) (text string, done bool) {
	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "Running file: %s\n", path)

	res, err := runner.Run(ctx, path, time.Duration(cfg.Run.TimeoutSeconds)*time.Second)
	if err != nil {
		if errors.Is(err, runner.ErrUnsupportedType) || errors.Is(err, runner.ErrNotFound) {
			fail(cmd, ExitUsageError, "%v", err)
			return "", true
		}
		switch {
		case errors.Is(err, runner.ErrTimeout):
			return fmt.Sprintf("Execution timed out after %d seconds", cfg.Run.TimeoutSeconds), false
		case errors.Is(err, runner.ErrInterpreterMissing):
			return fmt.Sprintf("Interpreter not found for %s: %v", path, err), false
		default:
			fail(cmd, ExitRuntimeError, "%v", err)
			return "", true
		}
	}

	if res.Success {
		fmt.Fprintln(stderr, "File executed successfully!")
		if strings.TrimSpace(res.Stdout) != "" {
			fmt.Fprint(cmd.OutOrStdout(), res.Stdout)
		}
		return "", true
	}

	text = res.ErrorText()
	fmt.Fprintf(stderr, "File execution failed (exit %d)\n", res.ExitCode)
	return text, false
}

// resolveInput returns the error text from the arguments, piped stdin, or an
// interactive prompt, in that order.
func resolveInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	in := cmd.InOrStdin()
	if !isTerminal(in) {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "No error text provided. Enter your error below:")
	fmt.Fprint(cmd.ErrOrStderr(), "Error text: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func writeExplanation(cmd *cobra.Command, e *output.Explanation, format string) error {
	if flagOut != "" {
		return output.WriteExplanation(e, format, flagOut, cmd.OutOrStdout())
	}
	w, err := output.GetWriter(format)
	if err != nil {
		return err
	}
	if pw, ok := w.(*output.PrettyWriter); ok {
		pw.Width = terminalWidth(cmd.OutOrStdout())
	}
	return w.Write(cmd.OutOrStdout(), e)
}

func openCache(cfg config.Config) (*cache.Cache, error) {
	return cache.New(cfg.Cache.Dir, cfg.Cache.MaxAgeDays, cache.WithLogger(logger))
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width for pretty output, capped at 100 columns.
func terminalWidth(v any) int {
	const maxWidth = 100
	f, ok := v.(*os.File)
	if !ok {
		return output.DefaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return output.DefaultWidth
	}
	return min(w, maxWidth)
}

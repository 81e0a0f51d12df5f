package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const (
	hookMarkerStart = "# >>> termexplain shell hook >>>"
	hookMarkerEnd   = "# <<< termexplain shell hook <<<"
)

var (
	hookShell string
	hookRC    string
	hookName  string
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage the shell helper that explains failed commands",
	Long: `Install a shell function into your rc file. Running "explain <command>"
runs the command and, if it fails, sends its error output to termexplain.`,
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the shell helper into your rc file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rcPath, err := resolveRCPath(hookShell, hookRC)
		if err != nil {
			return err
		}
		if !validFuncName(hookName) {
			return fmt.Errorf("invalid function name %q", hookName)
		}

		section := generateHookScript(hookName)

		existing, err := os.ReadFile(rcPath)
		if err != nil && !os.IsNotExist(err) {
			fail(cmd, ExitRuntimeError, "reading %s: %v", rcPath, err)
			return nil
		}

		var content string
		if len(existing) == 0 {
			content = section
		} else {
			content = replaceHookSection(string(existing), section)
		}

		if err := os.MkdirAll(filepath.Dir(rcPath), 0o755); err != nil {
			fail(cmd, ExitRuntimeError, "creating directory for %s: %v", rcPath, err)
			return nil
		}
		if err := os.WriteFile(rcPath, []byte(content), 0o644); err != nil {
			fail(cmd, ExitRuntimeError, "writing %s: %v", rcPath, err)
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Installed %q helper in %s\n", hookName, rcPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Restart your shell or run: source %s\n", rcPath)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the shell helper from your rc file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rcPath, err := resolveRCPath(hookShell, hookRC)
		if err != nil {
			return err
		}

		existing, err := os.ReadFile(rcPath)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintf(cmd.OutOrStdout(), "No rc file found at %s\n", rcPath)
				return nil
			}
			fail(cmd, ExitRuntimeError, "reading %s: %v", rcPath, err)
			return nil
		}

		content := removeHookSection(string(existing))
		if content == string(existing) {
			fmt.Fprintf(cmd.OutOrStdout(), "No termexplain helper found in %s\n", rcPath)
			return nil
		}

		if err := os.WriteFile(rcPath, []byte(content), 0o644); err != nil {
			fail(cmd, ExitRuntimeError, "writing %s: %v", rcPath, err)
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed termexplain helper from %s\n", rcPath)
		return nil
	},
}

// resolveRCPath picks the rc file: an explicit path wins, otherwise the rc
// file for shell (or $SHELL) in the home directory.
func resolveRCPath(shell, rc string) (string, error) {
	if rc != "" {
		return rc, nil
	}
	if shell == "" {
		shell = filepath.Base(os.Getenv("SHELL"))
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch shell {
	case "bash":
		return filepath.Join(home, ".bashrc"), nil
	case "zsh":
		return filepath.Join(home, ".zshrc"), nil
	case "":
		return "", fmt.Errorf("cannot detect shell; pass --shell or --rc")
	default:
		return "", fmt.Errorf("unsupported shell %q (supported: bash, zsh)", shell)
	}
}

func validFuncName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}

// generateHookScript returns the rc block defining a function that runs its
// arguments as a command and explains the captured stderr on failure.
func generateHookScript(name string) string {
	var b strings.Builder
	b.WriteString(hookMarkerStart + "\n")
	fmt.Fprintf(&b, "%s() {\n", name)
	b.WriteString("  local __te_err __te_status\n")
	b.WriteString("  __te_err=$(\"$@\" 2>&1 >/dev/tty)\n")
	b.WriteString("  __te_status=$?\n")
	b.WriteString("  if [ $__te_status -ne 0 ] && [ -n \"$__te_err\" ]; then\n")
	b.WriteString("    printf '%s\\n' \"$__te_err\" >&2\n")
	b.WriteString("    printf '%s\\n' \"$__te_err\" | termexplain\n")
	b.WriteString("  fi\n")
	b.WriteString("  return $__te_status\n")
	b.WriteString("}\n")
	b.WriteString(hookMarkerEnd + "\n")
	return b.String()
}

func replaceHookSection(existing, section string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")
	return before + section + after
}

func removeHookSection(existing string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return existing
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")

	return before + after
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookCmd.PersistentFlags().StringVar(&hookShell, "shell", "", "Shell to configure (bash, zsh; default: $SHELL)")
	hookCmd.PersistentFlags().StringVar(&hookRC, "rc", "", "rc file to edit (default: ~/.bashrc or ~/.zshrc)")
	hookInstallCmd.Flags().StringVar(&hookName, "name", "explain", "Name of the shell function")
}

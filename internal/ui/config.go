package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wardrota/wardrota/internal/config"
	"github.com/wardrota/wardrota/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  wardrota config`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInteractive(path, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&path, "file", config.DefaultConfigPath(), "Config file to edit")
	return cmd
}

func runConfigInteractive(configPath string, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Check if file exists
	_, fileErr := os.Stat(configPath)
	isNew := errors.Is(fileErr, os.ErrNotExist)

	if isNew {
		fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	// Display current config
	printConfig(out, cfg)

	reader := bufio.NewReader(in)

	// Ask if user wants to edit
	if !promptYesNo(reader, out, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Storage.Backend = promptChoice(reader, out, "Storage backend", cfg.Storage.Backend,
		[]string{config.BackendSQLite, config.BackendRemote})
	if cfg.Storage.Backend == config.BackendSQLite {
		cfg.Storage.DBPath = promptValue(reader, out, "Database path", cfg.Storage.DBPath)
	} else {
		cfg.Remote.BaseURL = promptValue(reader, out, "API base URL", cfg.Remote.BaseURL)
		cfg.Remote.APIKey = promptValue(reader, out, "API key", cfg.Remote.APIKey)
		cfg.Remote.RedisAddr = promptValue(reader, out, "Redis address (empty to disable cache)", cfg.Remote.RedisAddr)
	}
	cfg.Editor.Encoding = promptChoice(reader, out, "Encoding", cfg.Editor.Encoding, []string{"runs", "bounding"})
	cfg.Editor.EmptyDayMarker = promptBool(reader, out, "Write a marker for empty days", cfg.Editor.EmptyDayMarker)
	cfg.UI.Theme = promptChoice(reader, out, "UI theme", cfg.UI.Theme, theme.Available())
	cfg.Log.Level = promptValue(reader, out, "Log level", cfg.Log.Level)

	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Save
	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out, "──────────────────────")
	fmt.Fprintln(out, "[storage]")
	fmt.Fprintf(out, "  backend          = %s\n", cfg.Storage.Backend)
	fmt.Fprintf(out, "  db_path          = %s\n", cfg.Storage.DBPath)
	if cfg.Storage.Backend == config.BackendRemote {
		fmt.Fprintln(out, "\n[remote]")
		fmt.Fprintf(out, "  base_url         = %s\n", cfg.Remote.BaseURL)
		fmt.Fprintf(out, "  api_key          = %s\n", maskSecret(cfg.Remote.APIKey))
		fmt.Fprintf(out, "  timeout          = %s\n", cfg.Remote.Timeout)
		fmt.Fprintf(out, "  save_rate        = %g\n", cfg.Remote.SaveRate)
		if cfg.Remote.RedisAddr != "" {
			fmt.Fprintf(out, "  redis_addr       = %s\n", cfg.Remote.RedisAddr)
			fmt.Fprintf(out, "  cache_ttl        = %s\n", cfg.Remote.CacheTTL)
		}
	}
	fmt.Fprintln(out, "\n[editor]")
	fmt.Fprintf(out, "  encoding         = %s\n", cfg.Editor.Encoding)
	fmt.Fprintf(out, "  empty_day_marker = %t\n", cfg.Editor.EmptyDayMarker)
	fmt.Fprintln(out, "\n[ui]")
	fmt.Fprintf(out, "  theme            = %s\n", cfg.UI.Theme)
	fmt.Fprintln(out, "\n[log]")
	fmt.Fprintf(out, "  level            = %s\n", cfg.Log.Level)
	fmt.Fprintf(out, "  file             = %s\n", cfg.Log.File)
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func promptYesNo(reader *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

// promptValue returns current when the answer is empty or input ended.
func promptValue(reader *bufio.Reader, out io.Writer, label, current string) string {
	if current == "" {
		fmt.Fprintf(out, "  %s: ", label)
	} else {
		fmt.Fprintf(out, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptBool(reader *bufio.Reader, out io.Writer, label string, current bool) bool {
	for {
		value := promptValue(reader, out, label, strconv.FormatBool(current))
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
		fmt.Fprintf(out, "  Invalid value %q. Use true or false\n", value)
		if _, err := reader.Peek(1); err != nil {
			return current
		}
	}
}

func promptChoice(reader *bufio.Reader, out io.Writer, label, current string, options []string) string {
	joined := strings.Join(options, ", ")
	label = fmt.Sprintf("%s (%s)", label, joined)
	for {
		value := strings.ToLower(promptValue(reader, out, label, current))
		for _, opt := range options {
			if value == opt {
				return value
			}
		}
		fmt.Fprintf(out, "  Invalid choice %q. Available: %s\n", value, joined)
		if _, err := reader.Peek(1); err != nil {
			return current
		}
	}
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/yildizm/movierec/internal/config"
	"github.com/yildizm/movierec/internal/emoji"
	"gopkg.in/yaml.v3"
)

// newConfigCommand creates the config command with subcommands
func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage movierec configuration",
		Long: `Manage movierec configuration files and settings.

The config command provides subcommands for initializing, viewing,
validating, and locating configuration files.`,
		// Config commands must work with a broken config file
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			emoji.SetEmojiDisabled(noEmoji)
		},
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigPathCommand())

	return configCmd
}

// newConfigInitCommand creates the config init subcommand
func newConfigInitCommand() *cobra.Command {
	var (
		outputPath string
		minimal    bool
		force      bool
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new configuration file",
		Long: `Initialize a new movierec configuration file with default values.

By default, creates a full configuration file with all options and comments.
Use --minimal for a compact configuration with only essential settings.`,
		Example: `  # Create full config in current directory
  movierec config init

  # Create minimal config
  movierec config init --minimal

  # Create config at specific path
  movierec config init --output ~/.config/movierec/config.yaml

  # Overwrite existing config
  movierec config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				outputPath = ".movierec.yaml"
			}
			outputPath = config.ExpandPath(outputPath)

			if !force && fileExists(outputPath) {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", outputPath)
			}

			dir := filepath.Dir(outputPath)
			if dir != "." && dir != "/" {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return fmt.Errorf("failed to create directory %s: %w", dir, err)
				}
			}

			content := config.SampleConfig()
			if minimal {
				content = config.MinimalSampleConfig()
			}

			if err := os.WriteFile(outputPath, []byte(content), 0o600); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Configuration file created at: %s\n", emoji.GetEmoji("success"), outputPath)
			if minimal {
				fmt.Fprintln(out, "Created minimal configuration with essential settings")
			} else {
				fmt.Fprintln(out, "Created full configuration with all options and documentation")
			}
			return nil
		},
	}

	initCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path for config file (default: .movierec.yaml)")
	initCmd.Flags().BoolVarP(&minimal, "minimal", "m", false, "create minimal configuration")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing config file")

	return initCmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	var format string

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current effective configuration after loading from all sources.

Shows the merged configuration from defaults, config files,
environment variable overrides and global flags.`,
		Example: `  # Show config in YAML format
  movierec config show

  # Show config in JSON format
  movierec config show --format json

  # Show config from specific file
  movierec config show --config /path/to/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			applyFlagOverrides(cmd, cfg)

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal config to JSON: %w", err)
				}
				fmt.Fprintln(out, string(data))
			case "yaml":
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal config to YAML: %w", err)
				}
				fmt.Fprint(out, string(data))
			default:
				return fmt.Errorf("unsupported format: %s (use json or yaml)", format)
			}
			return nil
		},
	}

	showCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml, json)")

	return showCmd
}

// newConfigValidateCommand creates the config validate subcommand
func newConfigValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate the movierec configuration for syntax and semantic errors.

Checks the configuration for:
- Valid YAML syntax
- A usable backend URL
- Known algorithm, theme, format and color names
- Non-negative timeouts and limits`,
		Example: `  # Validate current config
  movierec config validate

  # Validate specific config file
  movierec config validate --config /path/to/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				fmt.Fprintf(out, "%s Configuration validation failed:\n", emoji.GetEmoji("error"))
				fmt.Fprintf(out, "   %v\n", err)
				return err
			}

			fmt.Fprintf(out, "%s Configuration is valid\n", emoji.GetEmoji("success"))
			fmt.Fprintln(out, "Configuration summary:")
			fmt.Fprintf(out, "   Version: %s\n", cfg.Version)
			fmt.Fprintf(out, "   Backend: %s (timeout %s)\n", cfg.Server.BaseURL, cfg.Server.Timeout)
			fmt.Fprintf(out, "   Default Algorithm: %s\n", cfg.Algorithm())
			fmt.Fprintf(out, "   Theme: %s\n", cfg.UI.Theme)
			fmt.Fprintf(out, "   Output Format: %s\n", cfg.Output.DefaultFormat)
			return nil
		},
	}

	return validateCmd
}

// newConfigPathCommand creates the config path subcommand
func newConfigPathCommand() *cobra.Command {
	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Long: `Display the list of paths movierec searches for configuration files.

Shows the search order and indicates which files exist.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration file search paths (in priority order):")
			fmt.Fprintln(out)

			priority := []string{"Highest", "Medium", "Lowest"}
			for i, path := range config.GetConfigPaths() {
				exists := " (not found)"
				if fileExists(path) {
					exists = " " + emoji.GetEmoji("success") + " (exists)"
				}

				fmt.Fprintf(out, "  %d. %s%s\n", i+1, path, exists)
				if i < len(priority) {
					fmt.Fprintf(out, "     Priority: %s\n", priority[i])
				}
				fmt.Fprintln(out)
			}

			if cfgFile != "" {
				fmt.Fprintf(out, "%s Config file from --config: %s\n", emoji.GetEmoji("target"), cfgFile)
			} else if currentConfig, found := config.FindConfigFile(); found {
				fmt.Fprintf(out, "%s Current config file: %s\n", emoji.GetEmoji("target"), currentConfig)
			} else {
				fmt.Fprintln(out, "No config file found, using defaults")
			}

			fmt.Fprintln(out)
			fmt.Fprintf(out, "Environment variables with %s prefix override file settings\n", config.EnvPrefix)
		},
	}

	return pathCmd
}

// Helper function to check if file exists
func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

package cli

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/yildizm/movierec/internal/config"
	"github.com/yildizm/movierec/internal/emoji"
	"github.com/yildizm/movierec/internal/ui"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	noEmoji   bool
	serverURL string
	timeout   time.Duration

	globalConfig *config.Config
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "movierec",
		Short: "Movie recommendations from your terminal",
		Long: `movierec asks a recommendation backend for movies a user may like.

Run it without arguments to open the interactive form: enter a user ID,
pick one of six algorithms and fetch. The recommend subcommand does the
same non-interactively for scripts.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadGlobalConfig,
		RunE:              runUI,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "recommendation backend base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "per-request timeout (0 keeps the configured value)")

	rootCmd.AddCommand(newUICommand())
	rootCmd.AddCommand(newRecommendCommand())
	rootCmd.AddCommand(newAlgorithmsCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "movierec %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// loadGlobalConfig resolves configuration for every command that talks
// to the backend: defaults, files, environment, then flags
func loadGlobalConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	applyFlagOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	globalConfig = cfg
	applyPresentation(cmd, cfg)
	return nil
}

// applyFlagOverrides copies explicitly set global flags into cfg
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server.BaseURL = serverURL
	}
	if flags.Changed("timeout") {
		cfg.Server.Timeout = timeout
	}
	if verbose {
		cfg.Log.Verbose = true
	}
	if noEmoji {
		cfg.UI.NoEmoji = true
	}
	if noColor {
		cfg.Output.ColorMode = "never"
	}
}

// applyPresentation sets the process-wide emoji, color and theme state
func applyPresentation(cmd *cobra.Command, cfg *config.Config) {
	disableEmoji := cfg.UI.NoEmoji
	// Auto-disable emojis on Windows if not explicitly set
	if runtime.GOOS == "windows" && !cmd.Flags().Changed("no-emoji") {
		disableEmoji = true
	}
	emoji.SetEmojiDisabled(disableEmoji)

	ui.SetColorDisabled(cfg.Output.ColorMode == "never")
	if !ui.SetThemeByName(cfg.UI.Theme) {
		ui.SetThemeByName("default")
	}
}

// GetGlobalConfig returns the loaded configuration, or defaults when
// no command has loaded one
func GetGlobalConfig() *config.Config {
	if globalConfig == nil {
		return config.DefaultConfig()
	}
	return globalConfig
}

// Global helpers
func isVerbose() bool {
	return verbose || (globalConfig != nil && globalConfig.Log.Verbose)
}

package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/yildizm/movierec/internal/config"
	"github.com/yildizm/movierec/internal/logger"
	"github.com/yildizm/movierec/internal/ui"
)

func newUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive recommendation form",
		Long: `Open the interactive form. Type a user ID, choose an algorithm with
the arrow keys and press enter to fetch recommendations.

With ui.watch_config enabled, edits to the config file are applied
while the form is open.`,
		Args: cobra.NoArgs,
		RunE: runUI,
	}
}

func runUI(cmd *cobra.Command, _ []string) error {
	cfg := GetGlobalConfig()

	log, closeLog := openLogger(cfg, nil)
	defer closeLog()

	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model := ui.NewFormModel(client, cfg.Algorithm(), log.WithComponent("ui"))
	return ui.Run(ctx, model, configWatch(ctx, cmd, cfg, log))
}

// configWatch returns a hook that streams config reloads into the
// running program, or nil when watching is off or impossible
func configWatch(ctx context.Context, cmd *cobra.Command, cfg *config.Config, log *logger.Logger) func(*tea.Program) {
	if !cfg.UI.WatchConfig {
		return nil
	}

	loader := config.NewLoader()
	path := loader.ResolvePath(cfgFile)
	if path == "" {
		log.Warn("watch_config is set but no config file was found")
		return nil
	}

	watcher, err := config.NewWatcher(loader, path, log.WithComponent("config"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return nil
	}

	return func(p *tea.Program) {
		go func() {
			err := watcher.Run(ctx, func(reloaded *config.Config) {
				applyFlagOverrides(cmd, reloaded)
				if err := reloaded.Validate(); err != nil {
					log.Warn("reloaded config rejected: %v", err)
					return
				}
				client, err := newClient(reloaded, log)
				if err != nil {
					log.Warn("reloaded config rejected: %v", err)
					return
				}
				p.Send(ui.ConfigReloaded{Config: reloaded, Recommender: client})
			})
			if err != nil {
				log.Warn("config watcher stopped: %v", err)
			}
		}()
	}
}

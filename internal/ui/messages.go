package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/movierec/internal/config"
	"github.com/yildizm/movierec/internal/form"
)

// recommendationsMsg carries a finished fetch back to Update
type recommendationsMsg struct {
	result form.Result
}

// ConfigReloaded delivers a reloaded configuration to a running form.
// Recommender, when set, replaces the one used for later requests.
type ConfigReloaded struct {
	Config      *config.Config
	Recommender form.Recommender
}

// fetchCommand runs one request off the UI goroutine
func fetchCommand(ctx context.Context, rec form.Recommender, req form.Request) tea.Cmd {
	return func() tea.Msg {
		return recommendationsMsg{result: form.Fetch(ctx, rec, req)}
	}
}

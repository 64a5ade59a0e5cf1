package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/yildizm/movierec/internal/config"
	"github.com/yildizm/movierec/internal/logger"
	"github.com/yildizm/movierec/internal/recommend"
	"github.com/yildizm/movierec/internal/ui"
)

// openLogger returns the diagnostic logger configured by cfg and a
// function that closes its file. console, when set and verbose is on,
// receives a readable copy of every entry.
func openLogger(cfg *config.Config, console io.Writer) (*logger.Logger, func()) {
	mirror := console != nil && isVerbose()

	if cfg.Log.File == "" {
		if mirror {
			return logger.NewTee("main", logger.VerboseFunc(isVerbose), io.Discard, console), func() {}
		}
		return logger.Nop(), func() {}
	}

	f, err := logger.OpenFile(config.ExpandPath(cfg.Log.File))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; logging disabled\n", err)
		return logger.Nop(), func() {}
	}

	checker := logger.VerboseFunc(isVerbose)
	if mirror {
		return logger.NewTee("main", checker, f, console), func() { _ = f.Close() }
	}
	return logger.NewWithWriter("main", checker, f), func() { _ = f.Close() }
}

// newClient builds a backend client from the server section of cfg
func newClient(cfg *config.Config, log *logger.Logger) (*recommend.Client, error) {
	client, err := recommend.NewClient(cfg.ClientConfig(), recommend.WithLogger(log.WithComponent("recommend")))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// useColor decides whether non-interactive output to w is colored
func useColor(cfg *config.Config, w io.Writer) bool {
	switch cfg.Output.ColorMode {
	case "always":
		return true
	case "never":
		return false
	}
	if ui.IsColorDisabled() {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

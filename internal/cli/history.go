package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/yildizm/movierec/internal/config"
	"github.com/yildizm/movierec/internal/emoji"
	"github.com/yildizm/movierec/internal/history"
)

func newHistoryCommand() *cobra.Command {
	var (
		limit    int
		failures bool
		stats    bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past recommendation requests",
		Long: `Show recommendation requests recorded in the diagnostic log
(log.file), most recent first.`,
		Example: `  # Last 20 requests
  movierec history

  # Only failed requests
  movierec history --failures --limit 5

  # Success rate and latency per algorithm over the last 100 requests
  movierec history --stats -n 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, limit, failures, stats)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to show (0 for all)")
	cmd.Flags().BoolVar(&failures, "failures", false, "only show failed requests")
	cmd.Flags().BoolVar(&stats, "stats", false, "summarize requests per algorithm")

	return cmd
}

func runHistory(cmd *cobra.Command, limit int, failuresOnly, stats bool) error {
	cfg := GetGlobalConfig()
	out := cmd.OutOrStdout()

	if cfg.Log.File == "" {
		return errors.New("history needs log.file to be set")
	}

	path := config.ExpandPath(cfg.Log.File)
	// #nosec G304 - path comes from validated configuration
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(out, "%s No recommendation history yet\n", emoji.GetEmoji("info"))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() { _ = f.Close() }()

	outcomes, err := history.Read(f)
	if err != nil {
		return err
	}

	outcomes = history.Filter(outcomes, failuresOnly, limit)
	if len(outcomes) == 0 {
		fmt.Fprintf(out, "%s No matching requests\n", emoji.GetEmoji("info"))
		return nil
	}

	if stats {
		writeStats(out, history.Summarize(outcomes))
		return nil
	}

	fmt.Fprintf(out, "%s Recommendation history\n\n", emoji.GetEmoji("history"))
	for _, o := range outcomes {
		writeOutcome(out, &o)
	}
	return nil
}

func writeOutcome(w io.Writer, o *history.Outcome) {
	when := "unknown time"
	if !o.Time.IsZero() {
		when = o.Time.Local().Format("2006-01-02 15:04:05")
	}

	if o.Success {
		fmt.Fprintf(w, "%s %s  user=%s  algo=%s  movies=%d  took=%s\n",
			emoji.GetEmoji("success"), when, o.UserID, o.Algorithm, o.Count, o.Duration)
		return
	}

	detail := o.Kind
	if o.Status > 0 {
		detail = fmt.Sprintf("%s %d", o.Kind, o.Status)
	}
	fmt.Fprintf(w, "%s %s  user=%s  algo=%s  failed=%s\n",
		emoji.GetEmoji("error"), when, o.UserID, o.Algorithm, detail)
}

func writeStats(w io.Writer, stats []history.AlgorithmStats) {
	fmt.Fprintf(w, "%s Requests per algorithm\n\n", emoji.GetEmoji("number"))
	fmt.Fprintf(w, "%-14s %8s %8s %8s %10s %10s %10s\n",
		"ALGORITHM", "REQUESTS", "FAILED", "SUCCESS", "MIN", "AVG", "MAX")
	for i := range stats {
		s := &stats[i]
		fmt.Fprintf(w, "%-14s %8d %8d %7.0f%% %10s %10s %10s\n",
			s.Algorithm, s.Count, s.ErrorCount, s.SuccessRate()*100,
			s.MinTime.Round(time.Millisecond), s.AvgTime().Round(time.Millisecond), s.MaxTime.Round(time.Millisecond))
	}
}

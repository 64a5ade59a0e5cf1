package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yildizm/movierec/internal/form"
	"github.com/yildizm/movierec/internal/formatter"
	"github.com/yildizm/movierec/internal/recommend"
)

func newRecommendCommand() *cobra.Command {
	var (
		userID string
		algo   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "recommend [user-id]",
		Short: "Fetch recommendations without the interactive form",
		Long: `Fetch recommendations for one user and print them.

The algorithm defaults to ui.default_algorithm and the format to
output.default_format.`,
		Example: `  # Recommendations for user 15 with the default algorithm
  movierec recommend -u 15

  # Item-based KNN as JSON
  movierec recommend 15 --algo "KNN Item" -o json

  # Against another backend
  movierec recommend -u 15 --server http://recs.internal:5000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && !cmd.Flags().Changed("user") {
				userID = args[0]
			}
			return runRecommend(cmd, userID, algo, output)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user ID to recommend for")
	cmd.Flags().StringVarP(&algo, "algo", "a", "", "algorithm (see \"movierec algorithms\")")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format (text, json, markdown, csv)")

	return cmd
}

func runRecommend(cmd *cobra.Command, userID, algo, output string) error {
	cfg := GetGlobalConfig()

	algorithm := cfg.Algorithm()
	if algo != "" {
		parsed, err := recommend.ParseAlgorithm(algo)
		if err != nil {
			return err
		}
		algorithm = parsed
	}

	format := cfg.Output.DefaultFormat
	if output != "" {
		format = output
	}
	f, err := formatter.New(format, useColor(cfg, cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	log, closeLog := openLogger(cfg, cmd.ErrOrStderr())
	defer closeLog()

	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}

	movies, err := client.Recommend(cmd.Context(), userID, algorithm)
	if err != nil {
		if errors.Is(err, recommend.ErrMissingUserID) {
			return errors.New(form.MsgMissingUserID)
		}
		if isVerbose() {
			return fmt.Errorf("%s: %w", form.MsgFetchFailed, err)
		}
		return errors.New(form.MsgFetchFailed)
	}

	out, err := f.Format(&formatter.Report{
		UserID:      userID,
		Algorithm:   algorithm,
		Movies:      movies,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to format recommendations: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yildizm/movierec/internal/emoji"
	"github.com/yildizm/movierec/internal/recommend"
)

func newAlgorithmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the recommendation algorithms",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			selected := GetGlobalConfig().Algorithm()
			out := cmd.OutOrStdout()

			for _, algo := range recommend.Algorithms() {
				if algo == selected {
					fmt.Fprintf(out, "%s %s (default)\n", emoji.GetEmoji("target"), algo)
				} else {
					fmt.Fprintf(out, "   %s\n", algo)
				}
			}
		},
	}
}

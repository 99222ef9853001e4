package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/questguild/questguild/internal/challenge"
	"github.com/questguild/questguild/internal/model"
)

func newPlayCmd(rt *runtime) *cobra.Command {
	var (
		target int
		title  string
		game   string
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a practice challenge",
		Long: `Play a game challenge outside of any quest.

The run is not recorded. Use it to warm up before a quest that requires a win.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if target == 0 {
				target = rt.app.Config.Challenge.DefaultTargetLevel
			}
			if target < challenge.MinTargetLevel || target > challenge.MaxTargetLevel {
				return fmt.Errorf("target level must be between %d and %d", challenge.MinTargetLevel, challenge.MaxTargetLevel)
			}
			res, err := rt.app.Challenges.Play(cmd.Context(), game, challenge.Request{
				TargetLevel: target,
				Title:       title,
				Input:       cmd.InOrStdin(),
				Output:      cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res, target)
			return nil
		},
	}

	cmd.Flags().IntVarP(&target, "target", "t", 0, "Level to reach (default from config)")
	cmd.Flags().StringVar(&title, "title", "Practice run", "Title shown while playing")
	cmd.Flags().StringVar(&game, "game", model.DefaultRequiredGame, "Game to play")

	return cmd
}

func printResult(out io.Writer, res challenge.Result, target int) {
	verdict := "Challenge failed"
	if res.Success {
		verdict = "Challenge won"
	}
	fmt.Fprintf(out, "%s: level %d of %d, %d points, %d lines in %s\n",
		verdict, res.FinalLevel, target, res.Score, res.LinesCleared, res.TimePlayed.Round(time.Second))
}

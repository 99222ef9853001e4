package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/questguild/questguild/internal/model"
	"github.com/questguild/questguild/internal/scoring"
)

func newHeroCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hero",
		Short: "Manage heroes",
	}

	cmd.AddCommand(newHeroRegisterCmd(rt))
	cmd.AddCommand(newHeroShowCmd(rt))

	return cmd
}

func newHeroRegisterCmd(rt *runtime) *cobra.Command {
	var email, phone string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new hero",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rt.user == "" || rt.password == "" {
				return errMissingCredentials
			}
			h, err := rt.app.Heroes.Register(cmd.Context(), rt.user, rt.password, email, phone)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome to the guild, %s! You start at level %d as %s.\n", h.Username, h.Level, h.Class)
			return nil
		},
	}

	rt.addCredentialFlags(cmd)
	cmd.Flags().StringVar(&email, "email", "", "Email address for alerts")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number for SMS alerts")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newHeroShowCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a hero's level, quest tally and challenge record",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := rt.login(cmd.Context())
			if err != nil {
				return err
			}
			sum, err := rt.app.Quests.Summary(cmd.Context(), h.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s, level %d %s (%d XP)\n", h.Username, h.Level, h.Class, h.Experience)
			fmt.Fprintln(out, sum)

			sc, err := scoring.InitScoring(h.Username, model.DefaultRequiredGame, rt.app.Scores)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Challenges: %d played, %d won", sc.GetAttempts(), sc.GetWins())
			if best := sc.GetHighScore(); best != nil {
				fmt.Fprintf(out, ", best %d points", best.Score)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	rt.addCredentialFlags(cmd)

	return cmd
}

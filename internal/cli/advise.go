package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/questguild/questguild/internal/advisor"
)

const renderWidth = 80

func newAdviseCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Consult the guild advisor",
	}

	cmd.AddCommand(newAdviseDescribeCmd(rt))
	cmd.AddCommand(newAdviseSummaryCmd(rt))

	return cmd
}

func newAdviseDescribeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "describe TITLE...",
		Short: "Write a quest description from its title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := rt.app.Advisor.Describe(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newAdviseSummaryCmd(rt *runtime) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Get the advisor's briefing on the hero's quest log",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := rt.login(ctx)
			if err != nil {
				return err
			}
			active, err := rt.app.Quests.Active(ctx, h.ID)
			if err != nil {
				return err
			}
			completed, err := rt.app.Quests.Completed(ctx, h.ID)
			if err != nil {
				return err
			}
			near, err := rt.app.Quests.NearDeadline(ctx, h.ID)
			if err != nil {
				return err
			}

			text, err := rt.app.Advisor.Summarize(ctx, active, completed, near)
			if err != nil {
				return err
			}
			if !raw {
				text = advisor.Render(text, renderWidth)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	rt.addCredentialFlags(cmd)
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown instead of rendering it")

	return cmd
}

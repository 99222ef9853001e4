package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNotifyCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Alert a hero about quests close to their deadline",
		Long: `Send an alert to each of the hero's contacts for every open quest due
within the next day. Deliveries are printed rather than sent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := rt.login(ctx)
			if err != nil {
				return err
			}
			near, err := rt.app.Quests.NearDeadline(ctx, h.ID)
			if err != nil {
				return err
			}
			sent, err := rt.app.Notifier.CheckDeadlines(ctx, h, near)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s sent.\n", sent, plural(sent, "alert"))
			return nil
		},
	}

	rt.addCredentialFlags(cmd)

	return cmd
}

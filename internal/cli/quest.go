package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/questguild/questguild/internal/challenge"
	"github.com/questguild/questguild/internal/model"
	"github.com/questguild/questguild/internal/quest"
)

const defaultDueIn = 7 * 24 * time.Hour

func newQuestCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quest",
		Short: "Manage a hero's quests",
	}

	cmd.AddCommand(newQuestListCmd(rt))
	cmd.AddCommand(newQuestAddCmd(rt))
	cmd.AddCommand(newQuestCompleteCmd(rt))
	cmd.AddCommand(newQuestDeleteCmd(rt))
	cmd.AddCommand(newQuestImportCmd(rt))

	return cmd
}

func newQuestListCmd(rt *runtime) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := rt.login(ctx)
			if err != nil {
				return err
			}

			var quests []*model.Quest
			switch filter {
			case "all":
				quests, err = rt.app.Quests.All(ctx, h.ID)
			case "active":
				quests, err = rt.app.Quests.Active(ctx, h.ID)
			case "completed":
				quests, err = rt.app.Quests.Completed(ctx, h.ID)
			case "due":
				quests, err = rt.app.Quests.NearDeadline(ctx, h.ID)
			case "challenges":
				quests, err = rt.app.Quests.WithGameChallenge(ctx, h.ID)
			default:
				return fmt.Errorf("unknown filter %q: use all, active, completed, due or challenges", filter)
			}
			if err != nil {
				return err
			}

			if len(quests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No quests found.")
				return nil
			}
			printQuests(cmd.OutOrStdout(), quests, rt.app.Clock.Now())
			return nil
		},
	}

	rt.addCredentialFlags(cmd)
	cmd.Flags().StringVarP(&filter, "filter", "f", "active", "Which quests: all, active, completed, due, challenges")

	return cmd
}

func printQuests(out io.Writer, quests []*model.Quest, now time.Time) {
	rows := make([][]string, 0, len(quests))
	for _, q := range quests {
		rows = append(rows, []string{
			strconv.FormatInt(q.ID, 10),
			q.Title,
			q.DueDate.Format("2006-01-02 15:04"),
			q.Priority.String(),
			questState(q, now),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "DUE", "PRIORITY", "STATUS").
		Rows(rows...)
	fmt.Fprintln(out, t.Render())
}

func questState(q *model.Quest, now time.Time) string {
	switch {
	case q.IsCompleted:
		return "done"
	case q.HasPendingChallenge():
		return fmt.Sprintf("%s level %d", q.RequiredGame, q.RequiredGameLevel)
	case now.After(q.DueDate):
		return "overdue"
	case q.IsNearDeadline(now):
		return "due soon"
	default:
		return "open"
	}
}

func newQuestAddCmd(rt *runtime) *cobra.Command {
	var (
		title       string
		description string
		due         string
		priority    string
		level       int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a quest",
		Long: `Add a quest to the hero's log.

Without --due the quest is due in a week. Without --priority the guild
advisor picks one from the title and due date. --challenge N requires
reaching level N in the falling-block game before the quest completes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := rt.login(ctx)
			if err != nil {
				return err
			}

			q := &model.Quest{
				Title:             title,
				Description:       description,
				RequiredGameLevel: level,
			}
			if due == "" {
				q.DueDate = rt.app.Clock.Now().Add(defaultDueIn)
			} else if q.DueDate, err = quest.ParseDue(due); err != nil {
				return err
			}
			suggested := priority == ""
			if q.Priority, err = rt.resolvePriority(ctx, priority, title, q.DueDate); err != nil {
				return err
			}

			if err := rt.app.Quests.Add(ctx, h.ID, q, level > 0); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Quest %d added: %s (due %s, %s priority", q.ID, q.Title, q.DueDate.Format("2006-01-02 15:04"), q.Priority)
			if suggested {
				fmt.Fprint(out, " suggested by the advisor")
			}
			fmt.Fprintln(out, ")")
			return nil
		},
	}

	rt.addCredentialFlags(cmd)
	cmd.Flags().StringVar(&title, "title", "", "Quest title")
	cmd.Flags().StringVar(&description, "description", "", "Quest description")
	cmd.Flags().StringVar(&due, "due", "", `Due date, "2006-01-02" or "2006-01-02 15:04"`)
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium or high (default: advisor's suggestion)")
	cmd.Flags().IntVar(&level, "challenge", 0, "Require reaching this game level to complete")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

// resolvePriority parses value, asking the advisor when it is empty.
func (rt *runtime) resolvePriority(ctx context.Context, value, title string, due time.Time) (model.Priority, error) {
	if value != "" {
		return model.ParsePriority(value)
	}
	return rt.app.Advisor.SuggestPriority(ctx, title, due)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid quest id %q", arg)
	}
	return id, nil
}

func newQuestCompleteCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete ID",
		Short: "Complete a quest, playing its challenge if it has one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			h, err := rt.login(ctx)
			if err != nil {
				return err
			}

			attempt, err := rt.app.Quests.AttemptCompletion(ctx, h, id, challenge.Request{
				Input:  cmd.InOrStdin(),
				Output: cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if attempt.Played {
				printResult(out, attempt.Challenge, attempt.Quest.RequiredGameLevel)
				if attempt.HighScore {
					fmt.Fprintln(out, "New high score!")
				}
			}
			if !attempt.Quest.IsCompleted {
				fmt.Fprintf(out, "Quest '%s' remains open, try again!\n", attempt.Quest.Title)
				return nil
			}

			xp := quest.Reward(attempt.Quest)
			h, err = rt.app.Heroes.AwardExperience(ctx, h.ID, xp)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Quest '%s' completed! +%d XP, now level %d.\n", attempt.Quest.Title, xp, h.Level)
			return nil
		},
	}

	rt.addCredentialFlags(cmd)

	return cmd
}

func newQuestDeleteCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Abandon a quest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			h, err := rt.login(cmd.Context())
			if err != nil {
				return err
			}
			if err := rt.app.Quests.Delete(cmd.Context(), h.ID, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Quest %d abandoned.\n", id)
			return nil
		},
	}

	rt.addCredentialFlags(cmd)

	return cmd
}

func newQuestImportCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import PATH...",
		Short: "Import quests from quest files or directories",
		Long: `Import quests from text files.

Each quest is a block of headers followed by its description. Blocks are
separated by a line of three or more dashes:

  TITLE: Slay the dragon
  DUE: 2026-11-01 18:00
  PRIORITY: high
  CHALLENGE: 4

  The beast has been seen near the northern pass.
  ---
  TITLE: Buy bread
  DUE: 2026-10-20

Every file directly inside a directory argument is read.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := rt.login(ctx)
			if err != nil {
				return err
			}
			drafts, err := quest.LoadQuests(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, d := range drafts {
				fallback := model.PriorityLow
				if d.Priority == nil {
					if fallback, err = rt.app.Advisor.SuggestPriority(ctx, d.Title, d.Due); err != nil {
						return err
					}
				}
				q := d.Quest(fallback)
				if err := rt.app.Quests.Add(ctx, h.ID, q, d.ChallengeLevel > 0); err != nil {
					return fmt.Errorf("%s: %w", d.Source, err)
				}
				fmt.Fprintf(out, "  %d  %s\n", q.ID, q.Title)
			}
			fmt.Fprintf(out, "Imported %d %s.\n", len(drafts), plural(len(drafts), "quest"))
			return nil
		},
	}

	rt.addCredentialFlags(cmd)

	return cmd
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

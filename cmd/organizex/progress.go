package main

import (
	"errors"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jeffanddom/organizex/internal/database"
	"github.com/jeffanddom/organizex/internal/rewards"
)

func questsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quests",
		Short: "Quest commands",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List quests by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			all, err := a.quests.All(cmd.Context())
			if err != nil {
				return err
			}

			p := newPrinter(cmd)
			return p.emit(all, func() {
				for _, category := range []string{database.CategoryDaily, database.CategoryWeekly, database.CategoryAchievements} {
					p.printf("%s:\n", category)
					for _, q := range all[category] {
						deadline := "no deadline"
						if q.Deadline != nil {
							deadline = "due " + humanize.Time(*q.Deadline)
						}
						p.printf("  [%-11s] %-24s %3d/%-3d %4d XP  %s  (%s)\n",
							q.Status, q.Title, q.Progress, q.Target, q.XPReward, q.ID, deadline)
					}
				}
			})
		},
	}

	completeCmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete a quest and collect its XP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			completion, err := a.quests.Complete(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			p := newPrinter(cmd)
			return p.emit(completion, func() {
				p.printf("✓ Completed %q: +%d XP\n", completion.QuestTitle, completion.XPGained)
				p.rewards(completion.Rewards)
			})
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Expire overdue quests and generate new ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			expired, err := a.quests.Sweep(cmd.Context())
			if err != nil {
				return err
			}

			p := newPrinter(cmd)
			return p.emit(map[string]any{"expired": expired}, func() {
				p.printf("✓ Expired %d quests\n", len(expired))
			})
		},
	}

	cmd.AddCommand(listCmd, completeCmd, sweepCmd)
	return cmd
}

func rewardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewards",
		Short: "Level, badge and bonus commands",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, badges and the closest rewards",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.rewards.Summary(cmd.Context())
			if err != nil {
				return err
			}

			p := newPrinter(cmd)
			return p.emit(summary, func() {
				p.printf("Level %d  (%d XP, %d to next level)\n", summary.Level, summary.XP, summary.NextLevelXP)
				p.printf("Streak: %d days\n", summary.Streak)
				p.printf("Badges: %d/%d  Achievements: %d/%d\n",
					summary.EarnedBadges, summary.TotalBadges,
					summary.CompletedAchievements, summary.TotalAchievements)
				if len(summary.NextBadges) > 0 {
					p.printf("\nClosest badges:\n")
					for _, b := range summary.NextBadges {
						p.printf("  %-22s %3.0f%%\n", b.Name, b.Progress)
					}
				}
			})
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Award any badges and achievements already earned",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.rewards.CheckRewards(cmd.Context(), 0)
			if err != nil {
				return err
			}

			p := newPrinter(cmd)
			return p.emit(result, func() {
				if len(result.NewBadges) == 0 && len(result.NewAchievements) == 0 {
					p.printf("Nothing new yet\n")
				}
				p.rewards(result)
			})
		},
	}

	bonusCmd := &cobra.Command{
		Use:   "bonus",
		Short: "Claim the daily bonus",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			p := newPrinter(cmd)
			if check, _ := cmd.Flags().GetBool("check"); check {
				bonus, err := a.rewards.DailyBonus(cmd.Context())
				if err != nil {
					return err
				}
				return p.emit(bonus, func() {
					if !bonus.Eligible {
						p.printf("%s\n", bonus.Reason)
						return
					}
					p.printf("%s bonus of %d XP is waiting (streak %d after claiming)\n", bonus.Type, bonus.Amount, bonus.StreakAfterClaim)
				})
			}

			claim, err := a.rewards.ClaimDailyBonus(cmd.Context())
			if errors.Is(err, rewards.ErrAlreadyClaimed) {
				return errors.New("daily bonus already claimed today")
			}
			if err != nil {
				return err
			}
			return p.emit(claim, func() {
				p.printf("✓ %s bonus: +%d XP (streak %d)\n", claim.Type, claim.Amount, claim.StreakAfterClaim)
				p.rewards(claim.Rewards)
			})
		},
	}
	bonusCmd.Flags().Bool("check", false, "Only report whether a bonus is available")

	cmd.AddCommand(statusCmd, checkCmd, bonusCmd)
	return cmd
}

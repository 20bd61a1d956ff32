package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/game"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/ui"
)

// maxClicksPerRun keeps `tome click` from standing in for an autoclicker.
const maxClicksPerRun = 100

func newClickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "click [n]",
		Short: "Read the tome n times (default 1)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return errors.New("at most one count is accepted")
			}
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 || n > maxClicksPerRun {
					return fmt.Errorf("count must be between 1 and %d", maxClicksPerRun)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 1
			if len(args) == 1 {
				n, _ = strconv.Atoi(args[0])
			}
			ctx := context.Background()
			return mutate(ctx, func(s *session) error {
				g := s.game()
				var total float64
				crits := 0
				for i := 0; i < n; i++ {
					res := g.Click()
					total += res.Gained
					if res.Crit {
						crits++
					}
				}
				line := fmt.Sprintf("%s +%s EXP", ui.Good.Render(ui.IconClick+" Read"), ui.Exp(total))
				if crits > 0 {
					line += fmt.Sprintf(" %s x%d", ui.BadgeCrit, crits)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("EXP", ui.Exp(g.Exp())))
				return tickAndPrint(ctx, s, cmd.OutOrStdout())
			})
		},
	}

	return cmd
}

func newTickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Catch up idle progress and save",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, cleanup, err := openService(ctx, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := s.svc.Load(ctx); err != nil {
				return err
			}
			res, err := s.svc.Tick(ctx)
			if err != nil {
				return err
			}
			printAdvance(cmd.OutOrStdout(), res)
			if len(res.Completions) == 0 && len(res.Unlocked) == 0 && res.IdleExp == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Nothing new."))
			}
			return s.svc.Save(ctx)
		},
	}

	return cmd
}

func newLevelUpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "levelup",
		Short: "Spend EXP to raise your level",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return mutate(ctx, func(s *session) error {
				g := s.game()
				before := g.Level()
				cost := g.LevelUpCost()
				if !g.LevelUp() {
					return fmt.Errorf("level %d needs %s EXP, you have %s", before+1, ui.Exp(cost), ui.Exp(g.Exp()))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.BadgeLevelUp, ui.Muted.Render(fmt.Sprintf("(%d → %d, -%s EXP)", before, g.Level(), ui.Exp(cost))))
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Per click", ui.Exp(g.ClickMultiplier())))
				return tickAndPrint(ctx, s, cmd.OutOrStdout())
			})
		},
	}

	return cmd
}

// tickAndPrint reports journal entries a command's own change just unlocked.
func tickAndPrint(ctx context.Context, s *session, out io.Writer) error {
	res, err := s.svc.Tick(ctx)
	if err != nil {
		return err
	}
	printAdvance(out, res)
	return nil
}

func printAdvance(out io.Writer, res game.AdvanceResult) {
	if res.IdleExp > 0 {
		fmt.Fprintf(out, "%s +%s idle EXP\n", ui.IconSparkle, ui.Exp(res.IdleExp))
	}
	for _, c := range res.Completions {
		line := fmt.Sprintf("%s %s", ui.Good.Render(ui.IconSparkle+" Finished"), c.ActionID)
		if c.ExpGained > 0 {
			line += " " + ui.Muted.Render("(+"+ui.Exp(c.ExpGained)+" EXP)")
		}
		if c.StatExpGained > 0 {
			line += " " + ui.Muted.Render(fmt.Sprintf("(+%s %s exp)", ui.Exp(c.StatExpGained), c.Stat))
		}
		if c.StatGained != nil && c.StatGained.LeveledUp {
			line += " " + ui.Gold.Render(fmt.Sprintf("%s is now %d", c.Stat, c.StatGained.NewLevel))
		}
		if c.Crit {
			line += " " + ui.BadgeCrit
		}
		fmt.Fprintln(out, line)
	}
	for _, en := range res.Unlocked {
		fmt.Fprintf(out, "%s %s %s\n", ui.IconJournal, ui.Gold.Render("New journal entry:"), en.Title)
	}
}

package root

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/game"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/idle"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/stats"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/ui"
)

func newActionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List training and meditation actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return mutate(ctx, func(s *session) error {
				g := s.game()
				if err := g.Gate(engine.FeatureTraining); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printGroup(out, g, idle.GroupTraining, ui.IconTrain+" Training")
				if g.ShowMeditation() {
					fmt.Fprintln(out, "")
					printGroup(out, g, idle.GroupMeditation, ui.IconMind+" Meditation")
				}
				return nil
			})
		},
	}

	return cmd
}

func printGroup(out io.Writer, g *game.Game, grp idle.Group, title string) {
	fmt.Fprintln(out, ui.H2.Render(title))
	for _, a := range g.Actions(grp) {
		cost := ""
		switch {
		case a.Kind == idle.KindStatTraining:
			cost = ui.Exp(g.TrainingCost(a.TrainsStat)) + " EXP/cycle"
		case a.ExpCost > 0:
			cost = ui.Exp(a.ExpCost) + " EXP"
		}
		fmt.Fprintf(out, "- %s %s %s %s %s\n", ui.Key.Render(a.ID), a.Name, ui.ProgressBar(a.Progress, 12), ui.ActionStatus(a.IsActive, a.Completed), ui.Muted.Render(cost))
	}
}

// findAction resolves an action id in whichever group holds it.
func findAction(g *game.Game, id string) (idle.Group, idle.Action, error) {
	for _, grp := range idle.Groups {
		if a, ok := g.Action(grp, id); ok {
			return grp, a, nil
		}
	}
	return "", idle.Action{}, fmt.Errorf("unknown action %q", id)
}

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Start or stop an idle action",
	}
	cmd.AddCommand(newTrainStartCmd(), newTrainStopCmd())
	return cmd
}

func actionArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("action_id is required")
	}
	return nil
}

func newTrainStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <action_id>",
		Short: "Start an action; others in its group stop",
		Args:  actionArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return mutate(ctx, func(s *session) error {
				g := s.game()
				grp, a, err := findAction(g, args[0])
				if err != nil {
					return err
				}
				feature := engine.FeatureTraining
				if grp == idle.GroupMeditation {
					feature = engine.FeatureMeditation
				}
				if err := g.Gate(feature); err != nil {
					return err
				}
				spent, ok := g.StartAction(grp, a.ID)
				if !ok {
					return fmt.Errorf("cannot start %s (already done, stat at cap, or not enough EXP)", a.Name)
				}
				line := fmt.Sprintf("%s %s", ui.Good.Render(ui.IconTrain+" Started"), a.Name)
				if spent > 0 {
					line += " " + ui.Muted.Render("(-"+ui.Exp(spent)+" EXP)")
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
				return nil
			})
		},
	}
}

func newTrainStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <action_id>",
		Short: "Stop an action; progress is lost",
		Args:  actionArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return mutate(ctx, func(s *session) error {
				g := s.game()
				grp, a, err := findAction(g, args[0])
				if err != nil {
					return err
				}
				g.StopAction(grp, a.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("Stopped"), a.Name)
				return nil
			})
		},
	}
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stat levels and training progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return mutate(ctx, func(s *session) error {
				g := s.game()
				if err := g.Gate(engine.FeatureStats); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				snap := g.Stats()
				fmt.Fprintln(out, ui.Heading(ui.IconTrain, "Stats"))
				fmt.Fprintln(out, ui.LabelValue("Level cap", g.StatCap()))
				for _, st := range stats.All {
					need := g.StatLevelCost(st)
					fmt.Fprintf(out, "- %-13s L%-3d %s %s\n", st, snap.Levels[st], ui.ProgressBar(snap.Exp[st]/need, 14),
						ui.Muted.Render(fmt.Sprintf("%s/%s", ui.Exp(snap.Exp[st]), ui.Exp(need))))
				}
				if err := g.Gate(engine.FeatureMeditation); err != nil {
					fmt.Fprintln(out, ui.Muted.Render(ui.IconLock+" "+err.Error()))
				}
				return nil
			})
		},
	}

	return cmd
}

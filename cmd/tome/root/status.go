package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/save"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show EXP, level, multipliers and unlocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return mutate(ctx, func(s *session) error {
				g := s.game()
				out := cmd.OutOrStdout()

				fmt.Fprintln(out, ui.Heading(ui.IconTome, g.Name()))
				fmt.Fprintln(out, ui.LabelValue("Level", g.Level()))
				fmt.Fprintln(out, ui.LabelValue("EXP", fmt.Sprintf("%s (next level at %s)", ui.Exp(g.Exp()), ui.Exp(g.LevelUpCost()))))
				fmt.Fprintln(out, ui.LabelValue("Lifetime EXP", ui.Exp(g.LifetimeExp())))
				if g.CanLevelUp() {
					fmt.Fprintln(out, ui.BadgeLevelUp+" "+ui.Muted.Render("run `tome levelup`"))
				}
				fmt.Fprintln(out, "")

				fmt.Fprintln(out, ui.H2.Render(ui.IconClick+" Clicking"))
				fmt.Fprintln(out, ui.LabelValue("Per click", ui.Exp(g.ClickMultiplier())))
				fmt.Fprintln(out, ui.LabelValue("Crit", fmt.Sprintf("%s chance, +%s", ui.Percent(g.CritChance()), ui.Percent(g.CritDamage()))))
				if rate := g.IdleExpRate(); rate > 0 {
					fmt.Fprintln(out, ui.LabelValue("Idle", ui.Exp(rate)+" EXP/s"))
				}
				if hint := g.ClickText(); hint != "" {
					fmt.Fprintln(out, ui.Gold.Render(hint))
				}
				fmt.Fprintln(out, "")

				fmt.Fprintln(out, ui.H2.Render(ui.IconLock+" Unlocks"))
				for _, f := range []engine.Feature{
					engine.FeatureHeader, engine.FeatureMenu, engine.FeatureUpgrades, engine.FeatureTraining,
					engine.FeatureStats, engine.FeatureMeditation, engine.FeatureAdventure,
				} {
					err := g.Gate(f)
					line := fmt.Sprintf("- %s %s", ui.Key.Render(string(f)+":"), ui.Enabled(err == nil))
					if err != nil {
						line += " " + ui.Muted.Render("("+err.Error()+")")
					}
					fmt.Fprintln(out, line)
				}

				if n := g.UnreadCount(); n > 0 {
					fmt.Fprintln(out, "")
					fmt.Fprintf(out, "%s %d unread journal entries %s\n", ui.IconJournal, n, ui.Muted.Render("(tome journal read)"))
				}
				if g.SaveIntegrity() != save.IntegrityValid {
					fmt.Fprintln(out, ui.Warn.Render(ui.IconWarn+" save integrity: "+g.SaveIntegrity()))
				}
				return nil
			})
		},
	}

	return cmd
}

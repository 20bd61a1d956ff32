package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/ui"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/upgrade"
)

func newUpgradesCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "upgrades",
		Short: "List upgrades you can see at your level",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, cleanup, err := openService(ctx, true)
			if err != nil {
				return err
			}
			defer cleanup()

			g := s.game()
			if err := g.Gate(engine.FeatureUpgrades); err != nil {
				return err
			}
			list := g.VisibleUpgrades()
			if all {
				list = g.Upgrades()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconShop, "Upgrades"))
			fmt.Fprintln(out, ui.LabelValue("EXP", ui.Exp(g.Exp())))
			var category engine.Category
			for _, u := range list {
				if u.Category != category {
					category = u.Category
					fmt.Fprintln(out, "")
					fmt.Fprintln(out, ui.H2.Render(string(category)))
				}
				cost := ui.Good.Render("maxed")
				switch {
				case u.Maxed():
				case g.CanPurchase(u.ID):
					cost = ui.Good.Render(ui.Exp(g.UpgradeCost(u.ID)))
				default:
					cost = ui.Muted.Render(ui.Exp(g.UpgradeCost(u.ID)))
				}
				fmt.Fprintf(out, "- %s %s L%d/%d %s\n  %s\n", ui.Key.Render(u.ID), u.Name, u.CurrentLevel, u.MaxLevel, cost, ui.Muted.Render(u.Effect))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include upgrades above your level")

	return cmd
}

func newBuyCmd() *cobra.Command {
	var times int
	cmd := &cobra.Command{
		Use:   "buy <upgrade_id>",
		Short: "Buy one level of an upgrade",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("upgrade_id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if times < 1 {
				return errors.New("--times must be at least 1")
			}
			ctx := context.Background()
			return mutate(ctx, func(s *session) error {
				g := s.game()
				if err := g.Gate(engine.FeatureUpgrades); err != nil {
					return err
				}
				var spent float64
				var last upgrade.PurchaseResult
				for i := 0; i < times; i++ {
					res := g.Purchase(args[0])
					if !res.OK {
						if i == 0 {
							return purchaseError(args[0], res.Reason)
						}
						break
					}
					spent += res.Spent
					last = res
				}
				u, _ := g.Upgrade(args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s → level %d %s\n", ui.Good.Render(ui.IconShop+" Bought"), u.Name, last.NewLevel, ui.Muted.Render("(-"+ui.Exp(spent)+" EXP)"))
				return tickAndPrint(ctx, s, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().IntVarP(&times, "times", "n", 1, "levels to buy, stopping early when EXP runs out")

	return cmd
}

func purchaseError(id string, reason upgrade.Reason) error {
	switch reason {
	case upgrade.ReasonNotFound:
		return fmt.Errorf("unknown upgrade %q", id)
	case upgrade.ReasonMaxLevel:
		return fmt.Errorf("%s is already at max level", id)
	case upgrade.ReasonCannotAfford:
		return fmt.Errorf("not enough EXP for %s", id)
	default:
		return fmt.Errorf("cannot buy %s: %s", id, reason)
	}
}

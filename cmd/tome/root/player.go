package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/ui"
)

func newNameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "name [new name]",
		Short: "Show or change your name",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return mutate(ctx, func(s *session) error {
				g := s.game()
				if len(args) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), g.Name())
					return nil
				}
				if err := g.SetName(strings.Join(args, " ")); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconSparkle+" You are now"), g.Name())
				return tickAndPrint(ctx, s, cmd.OutOrStdout())
			})
		},
	}

	return cmd
}

func newResetCmd() *cobra.Command {
	var keepName, yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Start over from nothing",
		Long: `Start over: EXP, level, upgrades, stats, actions and the journal are wiped.

The save history is kept, so "tome save restore" can undo a reset.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("this wipes all progress; pass --yes to confirm")
			}
			ctx := context.Background()
			return mutate(ctx, func(s *session) error {
				if err := s.svc.HardReset(ctx, keepName); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render(ui.IconReset+" Reset"), ui.Muted.Render("welcome, "+s.game().Name()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&keepName, "keep-name", false, "keep your name")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")

	return cmd
}

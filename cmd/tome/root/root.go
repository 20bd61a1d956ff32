package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/save"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/ui"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tome",
		Short:         "TomeClicker: an idle game about reading one very long book",
		Long:          "TomeClicker is a terminal idle game. Click the tome for EXP, buy upgrades, train stats and unlock the journal.",
		Version:       save.CurrentVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	cmd.AddCommand(
		newStatusCmd(),
		newClickCmd(),
		newTickCmd(),
		newLevelUpCmd(),
		newUpgradesCmd(),
		newBuyCmd(),
		newActionsCmd(),
		newTrainCmd(),
		newStatsCmd(),
		newJournalCmd(),
		newSaveCmd(),
		newNameCmd(),
		newResetCmd(),
		newPlayCmd(),
	)
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}

package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/ui"
)

func newSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Export, import and roll back saves",
	}
	cmd.AddCommand(
		newSaveExportCmd(),
		newSaveImportCmd(),
		newSaveHistoryCmd(),
		newSaveRestoreCmd(),
		newSaveClearCmd(),
	)
	return cmd
}

func newSaveExportCmd() *cobra.Command {
	var legacy, encrypted bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the current save",
		Long: `Print the current save as JSON on stdout.

--legacy writes the 0.1.0 format older clients read; add --encrypted for the
obfuscated variant.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if encrypted && !legacy {
				return errors.New("--encrypted requires --legacy")
			}
			ctx := context.Background()
			s, cleanup, err := openService(ctx, true)
			if err != nil {
				return err
			}
			defer cleanup()

			var out string
			if legacy {
				out, err = s.svc.ExportLegacy(encrypted)
			} else {
				out, err = s.svc.Export()
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&legacy, "legacy", false, "write the 0.1.0 format")
	cmd.Flags().BoolVar(&encrypted, "encrypted", false, "obfuscate the legacy payload")

	return cmd
}

func newSaveImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the current game with a save file",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("a file path (or - for stdin) is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			ctx := context.Background()
			s, cleanup, err := openService(ctx, false)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := s.svc.Import(ctx, raw)
			if err != nil {
				return err
			}
			g := s.game()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconSave+" Imported"), g.Name(),
				ui.Muted.Render(fmt.Sprintf("(%s, level %d, %s EXP)", res.Format, g.Level(), ui.Exp(g.Exp()))))
			if res.Warning != "" {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render(ui.IconWarn+" "+res.Warning))
			}
			return nil
		},
	}

	return cmd
}

func readInput(stdin io.Reader, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read save: %w", err)
	}
	return string(b), nil
}

func newSaveHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List earlier saves",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, cleanup, err := openService(ctx, false)
			if err != nil {
				return err
			}
			defer cleanup()

			hist, err := s.svc.History(ctx, limit)
			if err != nil {
				return err
			}
			if len(hist) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No saves yet."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconSave, "Save history"))
			for _, h := range hist {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %s level %d, %s EXP %s\n",
					ui.Key.Render(h.ID), h.CreatedAt.Local().Format("2006-01-02 15:04:05"), h.Level, ui.Exp(h.Exp),
					ui.Muted.Render("v"+h.Version))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "entries to show")

	return cmd
}

func newSaveRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <history_id>",
		Short: "Roll the game back to an earlier save",
		Long: `Roll the game back to a save listed by "tome save history".

The current game is replaced. It stays in the history, so a restore can be undone
by restoring the newer entry.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("history_id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, cleanup, err := openService(ctx, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := s.svc.Restore(ctx, args[0]); err != nil {
				return err
			}
			g := s.game()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render(ui.IconReset+" Restored"),
				ui.Muted.Render(fmt.Sprintf("(level %d, %s EXP)", g.Level(), ui.Exp(g.Exp()))))
			return nil
		},
	}

	return cmd
}

func newSaveClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the current save (history is kept)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("this deletes your save; pass --yes to confirm")
			}
			ctx := context.Background()
			s, cleanup, err := openService(ctx, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := s.svc.HardReset(ctx, false); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render(ui.IconReset+" Save cleared"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")

	return cmd
}

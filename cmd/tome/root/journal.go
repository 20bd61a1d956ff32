package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/ui"
)

func newJournalCmd() *cobra.Command {
	var chapter int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List unlocked journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return mutate(ctx, func(s *session) error {
				g := s.game()
				out := cmd.OutOrStdout()
				entries := g.Journal()
				if chapter > 0 {
					entries = entries[:0]
					for _, en := range g.ChapterEntries(chapter) {
						if en.Unlocked {
							entries = append(entries, en)
						}
					}
				}
				if len(entries) == 0 {
					fmt.Fprintln(out, ui.Muted.Render("The journal is empty. Keep reading."))
					return nil
				}

				fmt.Fprintln(out, ui.Heading(ui.IconJournal, "Journal"))
				current := 0
				for _, en := range entries {
					if en.Chapter != current {
						current = en.Chapter
						fmt.Fprintln(out, ui.H2.Render(fmt.Sprintf("Chapter %d", current)))
					}
					mark := " "
					if !en.Acknowledged {
						mark = ui.Gold.Render("*")
					}
					when := time.UnixMilli(en.UnlockedAt).Format("2006-01-02 15:04")
					fmt.Fprintf(out, "%s %s %s %s\n", mark, ui.Key.Render(en.ID), en.Title, ui.Muted.Render(when))
				}
				if n := g.UnreadCount(); n > 0 {
					fmt.Fprintf(out, "\n%d unread %s\n", n, ui.Muted.Render("(tome journal read)"))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&chapter, "chapter", 0, "only show one chapter")
	cmd.AddCommand(newJournalReadCmd(), newJournalDismissCmd())

	return cmd
}

func newJournalReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read [entry_id]",
		Short: "Read the next unread entry, or a specific one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return mutate(ctx, func(s *session) error {
				g := s.game()
				var id string
				if len(args) == 1 {
					id = args[0]
				} else {
					queue := g.JournalQueue()
					if len(queue) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Nothing unread."))
						return nil
					}
					id = queue[0].ID
				}
				en, ok := g.JournalEntry(id)
				if !ok || !en.Unlocked {
					return fmt.Errorf("no unlocked journal entry %q", id)
				}
				res := g.AcknowledgeEntry(id)
				g.DismissEntry(id)
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, ui.Heading(ui.IconJournal, en.Title))
				fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("Chapter %d", en.Chapter)))
				fmt.Fprintln(out, "")
				fmt.Fprintln(out, en.Text)
				if res.RemainingUnread > 0 {
					fmt.Fprintf(out, "\n%s\n", ui.Muted.Render(fmt.Sprintf("%d more unread", res.RemainingUnread)))
				}
				return nil
			})
		},
	}
}

func newJournalDismissCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <entry_id>",
		Short: "Drop an entry from the unread queue without reading it",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("entry_id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return mutate(ctx, func(s *session) error {
				if !s.game().DismissEntry(args[0]) {
					return fmt.Errorf("%q is not in the unread queue", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Dismissed %s\n", ui.Muted.Render(args[0]))
				return nil
			})
		},
	}
}

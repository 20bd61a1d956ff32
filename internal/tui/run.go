package tui

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/game"
)

// RunPlay opens the interactive game and saves on exit.
func RunPlay(ctx context.Context, svc *game.Service, tick time.Duration, out io.Writer) error {
	m := newPlayModel(ctx, svc, tick)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(playModel); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

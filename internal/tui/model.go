package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/game"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/idle"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/stats"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/ui"
)

type screen int

const (
	screenTome screen = iota
	screenUpgrades
	screenTraining
	screenStats
	screenJournal
)

var screenNames = []string{"Tome", "Upgrades", "Training", "Stats", "Journal"}

// Game state is only touched from Update, never from a tea.Cmd goroutine.
type playModel struct {
	ctx      context.Context
	svc      *game.Service
	interval time.Duration

	width  int
	height int

	screen   screen
	selected int

	lastLog  string
	quitting bool
	err      error
}

type tickMsg time.Time

func newPlayModel(ctx context.Context, svc *game.Service, interval time.Duration) playModel {
	if interval <= 0 {
		interval = time.Second
	}
	return playModel{
		ctx:      ctx,
		svc:      svc,
		interval: interval,
		lastLog:  "Welcome back.",
	}
}

func (m playModel) Init() tea.Cmd {
	return m.tickCmd()
}

func (m playModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		res, err := m.svc.Tick(m.ctx)
		if err != nil {
			m.lastLog = "Tick failed: " + err.Error()
			return m, m.tickCmd()
		}
		m.logAdvance(res)
		return m, m.tickCmd()
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m *playModel) logAdvance(res game.AdvanceResult) {
	for _, c := range res.Completions {
		line := fmt.Sprintf("%s %s finished", ui.IconSparkle, c.ActionID)
		if c.ExpGained > 0 {
			line += fmt.Sprintf(": +%s EXP", ui.Exp(c.ExpGained))
		}
		if c.StatExpGained > 0 {
			line += fmt.Sprintf(": +%s %s exp", ui.Exp(c.StatExpGained), c.Stat)
		}
		if c.Crit {
			line += " " + ui.BadgeCrit
		}
		m.lastLog = line
	}
	for _, en := range res.Unlocked {
		m.lastLog = fmt.Sprintf("%s New journal entry: %s", ui.IconJournal, en.Title)
	}
}

func (m playModel) handleKey(key string) (tea.Model, tea.Cmd) {
	g := m.svc.Game()
	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		if err := m.svc.Save(m.ctx); err != nil {
			m.err = err
		}
		return m, tea.Quit
	case "tab":
		m.nextScreen()
		return m, nil
	case "1", "2", "3", "4", "5":
		s := screen(key[0] - '1')
		if m.screenOpen(s) {
			m.screen = s
			m.selected = 0
		}
		return m, nil
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if m.selected < m.rowCount()-1 {
			m.selected++
		}
		return m, nil
	case "l":
		if g.LevelUp() {
			m.lastLog = fmt.Sprintf("%s Reached level %d", ui.BadgeLevelUp, g.Level())
		} else {
			m.lastLog = fmt.Sprintf("Level up needs %s EXP.", ui.Exp(g.LevelUpCost()))
		}
		return m, nil
	case "w":
		if err := m.svc.Save(m.ctx); err != nil {
			m.lastLog = "Save failed: " + err.Error()
			return m, nil
		}
		m.lastLog = ui.IconSave + " Saved."
		return m, nil
	case " ", "enter":
		m.activate()
		return m, nil
	}
	return m, nil
}

// activate performs the primary action of the current screen.
func (m *playModel) activate() {
	g := m.svc.Game()
	switch m.screen {
	case screenTome:
		res := g.Click()
		m.lastLog = fmt.Sprintf("%s +%s EXP", ui.IconClick, ui.Exp(res.Gained))
		if res.Crit {
			m.lastLog += " " + ui.BadgeCrit
		}
	case screenUpgrades:
		ups := g.VisibleUpgrades()
		if m.selected >= len(ups) {
			return
		}
		u := ups[m.selected]
		res := g.Purchase(u.ID)
		if !res.OK {
			m.lastLog = fmt.Sprintf("Cannot buy %s (%s).", u.Name, res.Reason)
			return
		}
		m.lastLog = fmt.Sprintf("%s %s is now level %d", ui.IconShop, u.Name, res.NewLevel)
	case screenTraining:
		rows := m.actionRows()
		if m.selected >= len(rows) {
			return
		}
		row := rows[m.selected]
		if row.action.IsActive {
			g.StopAction(row.group, row.action.ID)
			m.lastLog = "Stopped " + row.action.Name + "."
			return
		}
		if _, ok := g.StartAction(row.group, row.action.ID); !ok {
			m.lastLog = "Cannot start " + row.action.Name + "."
			return
		}
		m.lastLog = "Started " + row.action.Name + "."
	case screenJournal:
		queue := g.JournalQueue()
		if len(queue) == 0 {
			return
		}
		res := g.AcknowledgeEntry(queue[0].ID)
		g.DismissEntry(queue[0].ID)
		m.lastLog = fmt.Sprintf("Read %q (%d unread).", queue[0].Title, res.RemainingUnread)
	}
}

func (m playModel) screenOpen(s screen) bool {
	g := m.svc.Game()
	switch s {
	case screenTome:
		return true
	case screenUpgrades:
		return g.ShowUpgrades()
	case screenTraining:
		return g.ShowTraining()
	case screenStats:
		return g.ShowStats()
	case screenJournal:
		return len(g.Journal()) > 0
	default:
		return false
	}
}

func (m *playModel) nextScreen() {
	for i := 1; i <= len(screenNames); i++ {
		s := screen((int(m.screen) + i) % len(screenNames))
		if m.screenOpen(s) {
			m.screen = s
			m.selected = 0
			return
		}
	}
}

func (m playModel) rowCount() int {
	g := m.svc.Game()
	switch m.screen {
	case screenUpgrades:
		return len(g.VisibleUpgrades())
	case screenTraining:
		return len(m.actionRows())
	case screenStats:
		return len(stats.All)
	case screenJournal:
		return len(g.Journal())
	default:
		return 0
	}
}

type actionRow struct {
	group  idle.Group
	action idle.Action
}

func (m playModel) actionRows() []actionRow {
	g := m.svc.Game()
	var rows []actionRow
	for _, a := range g.Actions(idle.GroupTraining) {
		rows = append(rows, actionRow{group: idle.GroupTraining, action: a})
	}
	if g.ShowMeditation() {
		for _, a := range g.Actions(idle.GroupMeditation) {
			rows = append(rows, actionRow{group: idle.GroupMeditation, action: a})
		}
	}
	return rows
}

func (m playModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n"
	}
	if m.quitting {
		return "Saved. See you soon.\n"
	}
	return m.renderHeader() + "\n" + m.renderTabs() + "\n\n" + m.renderMain() + "\n" + m.renderFooter()
}

func (m playModel) renderHeader() string {
	g := m.svc.Game()
	if !g.ShowHeader() {
		return ui.Heading(ui.IconTome, "TomeClicker")
	}
	ratio := g.Exp() / g.LevelUpCost()
	return fmt.Sprintf("%s | %s | Level %d | EXP %s %s",
		ui.Heading(ui.IconTome, "TomeClicker"), g.Name(), g.Level(), ui.Exp(g.Exp()), ui.ProgressBar(ratio, 20))
}

func (m playModel) renderTabs() string {
	if !m.svc.Game().ShowMenu() {
		return ""
	}
	var tabs []string
	for i, name := range screenNames {
		s := screen(i)
		if !m.screenOpen(s) {
			continue
		}
		label := fmt.Sprintf("%d %s", i+1, name)
		if s == screenJournal {
			if n := m.svc.Game().UnreadCount(); n > 0 {
				label += fmt.Sprintf(" (%d)", n)
			}
		}
		if s == m.screen {
			label = ui.SelectedRow.Render(label)
		}
		tabs = append(tabs, label)
	}
	return strings.Join(tabs, "  ")
}

func (m playModel) renderMain() string {
	switch m.screen {
	case screenUpgrades:
		return m.renderUpgrades()
	case screenTraining:
		return m.renderTraining()
	case screenStats:
		return m.renderStats()
	case screenJournal:
		return m.renderJournal()
	default:
		return m.renderTome()
	}
}

func (m playModel) renderTome() string {
	g := m.svc.Game()
	lines := []string{
		ui.Panel.Render(ui.IconTome + "  press space to read"),
	}
	if hint := g.ClickText(); hint != "" {
		lines = append(lines, ui.Gold.Render(hint))
	}
	lines = append(lines, "",
		ui.LabelValue("Per click", ui.Exp(g.ClickMultiplier())),
		ui.LabelValue("Crit", ui.Percent(g.CritChance())+" for +"+ui.Percent(g.CritDamage())),
	)
	if rate := g.IdleExpRate(); rate > 0 {
		lines = append(lines, ui.LabelValue("Idle", ui.Exp(rate)+"/s"))
	}
	return strings.Join(lines, "\n")
}

func (m playModel) renderUpgrades() string {
	g := m.svc.Game()
	var out []string
	for i, u := range g.VisibleUpgrades() {
		cost := "max"
		if !u.Maxed() {
			cost = ui.Exp(g.UpgradeCost(u.ID))
		}
		line := fmt.Sprintf("%s %-22s L%d/%d  %8s  %s", cursor(i == m.selected), u.Name, u.CurrentLevel, u.MaxLevel, cost, ui.Muted.Render(u.Effect))
		if g.CanPurchase(u.ID) {
			line = ui.Good.Render(line)
		}
		out = append(out, line)
	}
	if len(out) == 0 {
		return ui.Muted.Render("(no upgrades yet)")
	}
	return strings.Join(out, "\n")
}

func (m playModel) renderTraining() string {
	var out []string
	for i, row := range m.actionRows() {
		a := row.action
		icon := ui.IconTrain
		if row.group == idle.GroupMeditation {
			icon = ui.IconMind
		}
		out = append(out, fmt.Sprintf("%s %s %-24s %s %s", cursor(i == m.selected), icon, a.Name,
			ui.ProgressBar(a.Progress, 16), ui.ActionStatus(a.IsActive, a.Completed)))
	}
	return strings.Join(out, "\n")
}

func (m playModel) renderStats() string {
	g := m.svc.Game()
	snap := g.Stats()
	out := []string{ui.LabelValue("Cap", g.StatCap())}
	for i, st := range stats.All {
		need := g.StatLevelCost(st)
		out = append(out, fmt.Sprintf("%s %-13s L%-3d %s", cursor(i == m.selected), st, snap.Levels[st],
			ui.ProgressBar(snap.Exp[st]/need, 16)))
	}
	if err := g.Gate(engine.FeatureMeditation); err != nil {
		out = append(out, "", ui.Muted.Render(ui.IconLock+" "+err.Error()))
	}
	return strings.Join(out, "\n")
}

func (m playModel) renderJournal() string {
	g := m.svc.Game()
	var out []string
	for i, en := range g.Journal() {
		mark := " "
		if !en.Acknowledged {
			mark = ui.Gold.Render("*")
		}
		out = append(out, fmt.Sprintf("%s %s Ch.%d %s", cursor(i == m.selected), mark, en.Chapter, en.Title))
	}
	if q := g.JournalQueue(); len(q) > 0 {
		out = append(out, "", ui.H2.Render(q[0].Title), q[0].Text)
	}
	return strings.Join(out, "\n")
}

func (m playModel) renderFooter() string {
	keys := "space: act  tab: next  l: level up  w: save  q: quit"
	return "\n" + m.lastLog + "\n" + ui.Muted.Render(keys)
}

func cursor(selected bool) string {
	if selected {
		return ">"
	}
	return " "
}

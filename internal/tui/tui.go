package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/tatianab/pattern-viewer/internal/assets"
	"github.com/tatianab/pattern-viewer/internal/briefing"
	"github.com/tatianab/pattern-viewer/internal/models"
	"github.com/tatianab/pattern-viewer/internal/selection"
)

// Briefer produces a route briefing for one pattern.
type Briefer interface {
	Brief(ctx context.Context, rec models.Record) (*briefing.Briefing, error)
}

// Options are the collaborators of the viewer besides the state machine.
type Options struct {
	Resolver *assets.Resolver
	// Briefer may be nil, which hides the briefing key.
	Briefer         Briefer
	BriefingTimeout time.Duration
	Logger          *slog.Logger
	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
}

type panel int

const (
	panelNightlord panel = iota
	panelShiftingEarth
	panelSpawnPoint
	panelResults
)

type model struct {
	machine  *selection.Machine
	resolver *assets.Resolver
	briefer  Briefer
	timeout  time.Duration
	log      *slog.Logger
	copy     func(string) error

	mdRenderer *glamour.TermRenderer

	keys     keyMap
	help     help.Model
	viewport viewport.Model

	focus   panel
	cursors [4]int
	// cardStarts holds the first viewport line of each displayed card.
	cardStarts []int
	status     string

	briefing        *briefing.Briefing
	briefingErr     error
	briefingLoading bool

	width  int
	height int
}

type briefingMsg struct {
	id       string
	briefing *briefing.Briefing
	err      error
}

func NewModel(m *selection.Machine, opts Options) model {
	if opts.Resolver == nil {
		opts.Resolver = assets.NewResolver("")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.BriefingTimeout <= 0 {
		opts.BriefingTimeout = 30 * time.Second
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	// A nil renderer falls back to the raw markdown.
	mdRenderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(60),
	)

	mdl := model{
		machine:  m,
		resolver: opts.Resolver,
		briefer:  opts.Briefer,
		timeout:  opts.BriefingTimeout,
		log:      opts.Logger,
		copy:     opts.Clipboard,
		keys:     newKeyMap(),
		help:     help.New(),
		viewport: viewport.New(80, 20),
		width:    80,
		height:   30,

		mdRenderer: mdRenderer,
	}
	mdl.refresh()
	return mdl
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.refresh()
		return m, nil

	case briefingMsg:
		open, ok := m.machine.Selection().OpenRecord.Get()
		if !ok || open != msg.id {
			// The user moved on before the briefing arrived.
			return m, nil
		}
		m.briefingLoading = false
		m.briefing, m.briefingErr = msg.briefing, msg.err
		if msg.err != nil {
			m.log.Warn("briefing failed", "id", msg.id, "err", msg.err)
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursors[m.focus] > 0 {
			m.cursors[m.focus]--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursors[m.focus] < len(m.items(m.focus))-1 {
			m.cursors[m.focus]++
		}

	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)

	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)

	case key.Matches(msg, m.keys.Choose):
		m.choose()

	case key.Matches(msg, m.keys.Reset):
		if !m.machine.Selection().Nightlord.IsSet() {
			return m, nil
		}
		m.machine.Reset()
		m.focus = panelNightlord
		m.cursors = [4]int{}
		m.status = ""
		m.clearBriefing()

	case key.Matches(msg, m.keys.Copy):
		m.copyPattern()

	case key.Matches(msg, m.keys.Brief):
		cmd := m.requestBriefing()
		m.refresh()
		return m, cmd
	}

	m.refresh()
	return m, nil
}

// choose applies the transition for the item under the cursor of the
// focused panel.
func (m *model) choose() {
	items := m.items(m.focus)
	if len(items) == 0 {
		return
	}
	v := items[m.cursors[m.focus]]

	var err error
	switch m.focus {
	case panelNightlord:
		err = m.machine.ChooseNightlord(v)
	case panelShiftingEarth:
		err = m.machine.ChooseShiftingEarth(v)
	case panelSpawnPoint:
		err = m.machine.ChooseSpawnPoint(v)
	case panelResults:
		err = m.machine.OpenRecord(v)
	}
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""

	if m.focus == panelResults {
		m.cursors[panelResults] = 0
		return
	}
	for p := m.focus + 1; p <= panelResults; p++ {
		m.cursors[p] = 0
	}
	m.clearBriefing()
	m.moveFocus(1)
}

func (m *model) requestBriefing() tea.Cmd {
	if m.briefer == nil || m.briefingLoading {
		return nil
	}
	id, ok := m.machine.Selection().OpenRecord.Get()
	if !ok {
		m.status = "open a pattern to request a briefing"
		return nil
	}
	displayed := m.machine.Displayed()
	if len(displayed) == 0 {
		return nil
	}
	rec := displayed[0]

	m.briefingLoading = true
	m.briefing, m.briefingErr = nil, nil
	briefer, timeout := m.briefer, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		b, err := briefer.Brief(ctx, rec)
		if errors.Is(err, context.DeadlineExceeded) {
			err = errors.New("briefing timed out")
		}
		return briefingMsg{id: id, briefing: b, err: err}
	}
}

// copyPattern copies the pattern under the results cursor as markdown.
func (m *model) copyPattern() {
	displayed := m.machine.Displayed()
	if m.focus != panelResults || len(displayed) == 0 {
		return
	}
	r := displayed[m.cursors[panelResults]]
	if err := m.copy(patternMarkdown(r)); err != nil {
		m.status = fmt.Sprintf("Clipboard error: %v", err)
		return
	}
	m.status = fmt.Sprintf("Copied pattern #%s to clipboard", r.ID)
}

func patternMarkdown(r models.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Pattern #%s\n\n", r.ID)
	fmt.Fprintf(&sb, "- Nightlord: %s\n- Shifting Earth: %s\n- Spawn Point: %s\n", r.Nightlord, r.ShiftingEarth, r.SpawnPoint)
	if r.SpecialEvent != "" {
		fmt.Fprintf(&sb, "- Special Event: %s\n", r.SpecialEvent)
	}
	fmt.Fprintf(&sb, "- Castle: %s\n- Night 1: %s\n- Night 2: %s\n", r.Castle, r.Night1Boss, r.Night2Boss)
	if r.ExtraNightBoss != "" {
		fmt.Fprintf(&sb, "- Extra Night: %s\n", r.ExtraNightBoss)
	}
	fmt.Fprintf(&sb, "- Finishing Circles: %s, %s\n", r.Night1Circle, r.Night2Circle)
	return sb.String()
}

func (m *model) clearBriefing() {
	m.briefing, m.briefingErr, m.briefingLoading = nil, nil, false
}

// visiblePanels lists the panels shown for the current selection: the
// step panels until a spawn point is committed, then the results.
func (m *model) visiblePanels() []panel {
	sel := m.machine.Selection()
	var ps []panel
	if !sel.SpawnPoint.IsSet() {
		ps = append(ps, panelNightlord)
		if sel.Nightlord.IsSet() {
			ps = append(ps, panelShiftingEarth)
		}
		if sel.ShiftingEarth.IsSet() {
			ps = append(ps, panelSpawnPoint)
		}
	}
	if sel.Nightlord.IsSet() && sel.SpawnPoint.IsSet() {
		ps = append(ps, panelResults)
	}
	return ps
}

func (m *model) moveFocus(delta int) {
	ps := m.visiblePanels()
	if len(ps) == 0 {
		return
	}
	idx := 0
	for i, p := range ps {
		if p == m.focus {
			idx = i
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(ps) {
		idx = len(ps) - 1
	}
	m.focus = ps[idx]
}

func (m *model) items(p panel) []string {
	switch p {
	case panelNightlord:
		return m.machine.NightlordOptions()
	case panelShiftingEarth:
		return m.machine.ShiftingEarthOptions()
	case panelSpawnPoint:
		return m.machine.SpawnPointOptions()
	case panelResults:
		displayed := m.machine.Displayed()
		ids := make([]string, len(displayed))
		for i, r := range displayed {
			ids[i] = r.ID
		}
		return ids
	}
	return nil
}

// refresh keeps focus and cursors valid and re-renders the results pane.
func (m *model) refresh() {
	visible := false
	for _, p := range m.visiblePanels() {
		if p == m.focus {
			visible = true
		}
	}
	if !visible {
		m.focus = panelNightlord
		if ps := m.visiblePanels(); len(ps) > 0 {
			m.focus = ps[len(ps)-1]
		}
	}
	for p := range m.cursors {
		if n := len(m.items(panel(p))); m.cursors[p] >= n {
			m.cursors[p] = max(n-1, 0)
		}
	}

	sel := m.machine.Selection()
	m.keys.Reset.SetEnabled(sel.Nightlord.IsSet())
	m.keys.Brief.SetEnabled(m.briefer != nil && sel.OpenRecord.IsSet())
	m.keys.Copy.SetEnabled(m.focus == panelResults && len(m.machine.Displayed()) > 0)

	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-m.chromeHeight(), 5)
	content, starts := m.renderResults()
	m.cardStarts = starts
	m.viewport.SetContent(content)

	if m.focus == panelResults && m.cursors[panelResults] < len(starts) {
		start := starts[m.cursors[panelResults]]
		if start < m.viewport.YOffset || start >= m.viewport.YOffset+m.viewport.Height {
			m.viewport.SetYOffset(start)
		}
	}
}

func Run(m *selection.Machine, opts Options) error {
	p := tea.NewProgram(NewModel(m, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

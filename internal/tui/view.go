package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/tatianab/pattern-viewer/internal/models"
)

var (
	amber = lipgloss.Color("#F59E0B")
	muted = lipgloss.Color("#9CA3AF")
	faint = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(muted)

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#111827")).
			Background(amber).
			Bold(true).
			Padding(0, 1)

	stepTitleStyle = lipgloss.NewStyle().
			Bold(true)

	chosenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#111827")).
			Background(amber)

	cursorStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true)

	assetStyle = lipgloss.NewStyle().
			Foreground(faint).
			Italic(true)

	resetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FCA5A5"))

	countStyle = lipgloss.NewStyle().
			Foreground(muted)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#374151")).
			Padding(0, 1)

	focusedCardStyle = cardStyle.
				BorderForeground(amber)

	labelStyle = lipgloss.NewStyle().
			Foreground(muted).
			Bold(true)

	eventStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C084FC"))
	bossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	circleStyle = lipgloss.NewStyle().Foreground(amber)

	emptyStyle = lipgloss.NewStyle().
			Foreground(faint).
			Align(lipgloss.Center)
)

func (m model) View() string {
	top := m.renderTop()
	bottom := m.renderBottom()
	return lipgloss.JoinVertical(lipgloss.Left, top, m.viewport.View(), bottom)
}

// chromeHeight is the number of lines used around the results pane.
func (m *model) chromeHeight() int {
	return lipgloss.Height(m.renderTop()) + lipgloss.Height(m.renderBottom())
}

func (m model) renderTop() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Elden Ring Nightreign") + "\n")
	b.WriteString(subtitleStyle.Render("Pattern Database & Map Viewer") + "\n")

	sel := m.machine.Selection()
	for _, p := range m.visiblePanels() {
		if p == panelResults {
			continue
		}
		b.WriteString("\n" + m.renderStep(p, sel))
	}

	if sel.Nightlord.IsSet() {
		b.WriteString("\n" + resetStyle.Render("[r] Reset Filters") + "\n")
	}

	count := m.machine.Count()
	b.WriteString("\n" + countStyle.Render(countLine(count.Unfiltered, count.N)))
	return b.String()
}

func (m model) renderBottom() string {
	var lines []string
	if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}
	lines = append(lines, m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

func countLine(unfiltered bool, n int) string {
	if unfiltered {
		return "Select filters to find patterns"
	}
	if n == 1 {
		return "Found 1 pattern"
	}
	return fmt.Sprintf("Found %d patterns", n)
}

func (m model) renderStep(p panel, sel models.Selection) string {
	var title string
	var committed models.Choice
	switch p {
	case panelNightlord:
		title, committed = "Select Nightlord", sel.Nightlord
	case panelShiftingEarth:
		title, committed = "Select Shifting Earth", sel.ShiftingEarth
	case panelSpawnPoint:
		title, committed = "Select Spawn Point", sel.SpawnPoint
	}

	var b strings.Builder
	b.WriteString(stepStyle.Render(fmt.Sprint(int(p)+1)) + " " + stepTitleStyle.Render(title) + "\n")

	labelWidth := max(m.width/2-4, 12)
	for i, v := range m.items(p) {
		prefix := "  "
		if p == m.focus && i == m.cursors[p] {
			prefix = cursorStyle.Render("> ")
		}
		label := runewidth.FillRight(runewidth.Truncate(v, labelWidth, "…"), labelWidth)
		if committed.Is(v) {
			label = chosenStyle.Render(label)
		}
		line := prefix + label
		if asset := m.optionAsset(p, v); asset != "" {
			line += " " + assetStyle.Render(asset)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m model) optionAsset(p panel, v string) string {
	switch p {
	case panelNightlord:
		return m.resolver.Nightlord(v).String()
	case panelSpawnPoint:
		return m.resolver.SpawnPoint(v).String()
	}
	return ""
}

// renderResults renders the results pane and the starting line of each card.
func (m model) renderResults() (string, []int) {
	sel := m.machine.Selection()
	if !sel.Nightlord.IsSet() || !sel.SpawnPoint.IsSet() {
		return "", nil
	}

	displayed := m.machine.Displayed()
	if len(m.machine.Matching()) == 0 {
		return emptyStyle.Width(m.width).Render("No patterns found\nTry different filter combinations"), nil
	}

	var cards []string
	var starts []int
	line := 0
	for i, r := range displayed {
		focused := m.focus == panelResults && i == m.cursors[panelResults]
		card := m.renderCard(r, focused, sel.OpenRecord.Is(r.ID))
		starts = append(starts, line)
		line += lipgloss.Height(card)
		cards = append(cards, card)
	}
	return strings.Join(cards, "\n"), starts
}

func (m model) renderCard(r models.Record, focused, open bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Pattern #"+r.ID) + "  " + assetStyle.Render(m.resolver.Pattern(r.ID).String()) + "\n")

	if r.SpecialEvent != "" {
		b.WriteString("\n" + labelStyle.Render("SPECIAL EVENT") + "\n" + eventStyle.Render(r.SpecialEvent) + "\n")
	}
	b.WriteString("\n" + labelStyle.Render("CASTLE") + "\n" + r.Castle + "\n")

	b.WriteString("\n" + labelStyle.Render("BOSS ENCOUNTERS") + "\n")
	b.WriteString("Night 1     " + bossStyle.Render(r.Night1Boss) + "\n")
	b.WriteString("Night 2     " + bossStyle.Render(r.Night2Boss) + "\n")
	if r.ExtraNightBoss != "" {
		b.WriteString("Extra Night " + bossStyle.Render(r.ExtraNightBoss) + "\n")
	}

	b.WriteString("\n" + labelStyle.Render("FINISHING CIRCLES") + "\n")
	b.WriteString(circleStyle.Render("› ") + r.Night1Circle + "\n")
	b.WriteString(circleStyle.Render("› ") + r.Night2Circle)

	if open {
		if brief := m.renderBriefing(); brief != "" {
			b.WriteString("\n\n" + labelStyle.Render("ROUTE BRIEFING") + "\n" + brief)
		}
	}

	style := cardStyle
	if focused {
		style = focusedCardStyle
	}
	return style.Width(max(m.width-2, 20)).Render(b.String())
}

func (m model) renderBriefing() string {
	switch {
	case m.briefingLoading:
		return subtitleStyle.Render("Requesting briefing...")
	case m.briefingErr != nil:
		return statusStyle.Render("Briefing unavailable: " + m.briefingErr.Error())
	case m.briefing != nil:
		md := m.briefing.Markdown()
		if m.mdRenderer != nil {
			if out, err := m.mdRenderer.Render(md); err == nil {
				return strings.TrimSpace(out)
			}
		}
		return md
	}
	return ""
}

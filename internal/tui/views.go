package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spice-reconcile/internal/keys"
	"github.com/Veraticus/spice-reconcile/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Screen rows above the candidate list: toolbar and info line.
const listTop = 2

const (
	maxUsedRows   = 6
	maxDetailRows = 6
)

// listHeight is the number of candidate rows that fit.
func (m Model) listHeight() int {
	reserved := 1 // status bar
	if c, _, ok := m.state.Selected(); ok {
		if e, ok := c.Primary(); ok {
			reserved += 1 + min(len(e.Postings), maxDetailRows)
		}
	}
	if set := m.state.Candidates(); set != nil && len(set.UsedTransactions) > 0 {
		reserved += 3 + min(len(set.UsedTransactions), maxUsedRows)
	}
	if m.editor.open() {
		reserved++
		if m.editor.mode == editorAccount {
			reserved += len(m.editor.matches(m.config.MaxSuggested))
		}
	}
	reserved += m.helpHeight()
	return max(m.height-listTop-reserved, 1)
}

func (m Model) helpHeight() int {
	if !m.help.ShowAll {
		return 1
	}
	rows := 0
	for _, col := range m.keymap.FullHelp() {
		rows = max(rows, len(col))
	}
	return rows
}

// rowAt maps a screen row to the global index of the candidate drawn there.
func (m Model) rowAt(y int) (int, bool) {
	if y < listTop || y >= listTop+m.listHeight() {
		return 0, false
	}
	return m.state.Filter().At(m.offset + y - listTop)
}

// scrollTo brings the candidate at global index into the list window.
func (m *Model) scrollTo(index int) {
	pos, ok := m.state.Filter().Position(index)
	if !ok {
		return
	}
	h := m.listHeight()
	if pos < m.offset {
		m.offset = pos
	} else if pos >= m.offset+h {
		m.offset = pos - h + 1
	}
}

func (m *Model) clampScroll() {
	m.offset = max(min(m.offset, m.state.Filter().Len()-m.listHeight()), 0)
	m.scrollTo(m.state.Selection().Selected)
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.state.HasCandidates() {
		return m.renderWaiting()
	}

	lines := []string{m.renderToolbar(), m.renderInfo()}
	lines = append(lines, m.renderList()...)
	lines = append(lines, m.renderDetail()...)
	if used := m.renderUsed(); used != "" {
		lines = append(lines, used)
	}
	if m.editor.open() {
		lines = append(lines, m.renderEditor()...)
	}
	lines = append(lines, m.renderStatusBar(), m.help.View(m.keymap))
	return strings.Join(lines, "\n")
}

func (m Model) renderWaiting() string {
	server := m.config.Server
	if server == "" {
		server = "the importer"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("spice reconcile"),
		"",
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Waiting for candidates from "+server+"..."),
		"",
		m.renderStatusBar(),
		m.help.View(m.keymap),
	)
}

func (m Model) renderToolbar() string {
	a := m.state.Actions()
	items := []struct {
		label string
		on    bool
	}{
		{"{ first", a.SkipFirst},
		{"[ prior", a.SkipPrior},
		{"] next", a.SkipNext},
		{"} last", a.SkipLast},
		{"a account", a.ChangeAccount},
		{"f fixme", a.Fixme},
		{"n narration", a.Narration},
		{"^ link", a.Link},
		{"# tag", a.Tag},
		{"R revert", a.Revert},
		{"t retrain", true},
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		style := m.theme.ToolbarOff
		if item.on {
			style = m.theme.ToolbarOn
		}
		parts = append(parts, style.Render(item.label))
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
}

func (m Model) renderInfo() string {
	set := m.state.Candidates()
	info := fmt.Sprintf("pending %d/%d · generation %d · %d of %d candidates shown",
		min(set.PendingIndex+1, set.NumPending), set.NumPending, set.Generation,
		m.state.Filter().Len(), set.Len())
	return m.theme.Title.Render(info)
}

func (m Model) renderList() []string {
	h := m.listHeight()
	filter := m.state.Filter()
	sel := m.state.Selection()
	set := m.state.Candidates()

	lines := make([]string, 0, h)
	for pos := m.offset; pos < m.offset+h; pos++ {
		index, ok := filter.At(pos)
		if !ok {
			lines = append(lines, "")
			continue
		}
		c, _ := set.Candidate(index)
		style := m.theme.Normal
		switch {
		case index == sel.Selected:
			style = m.theme.Selected
		case sel.HasHover && index == sel.Hover:
			style = m.theme.Highlighted
		}
		lines = append(lines, style.MaxWidth(m.width).Render(candidateRow(c, index == sel.Selected)))
	}
	if filter.Len() == 0 {
		lines[0] = lipgloss.NewStyle().Foreground(m.theme.Muted).Render("  every candidate uses an ignored transaction")
	}
	return lines
}

func candidateRow(c model.Candidate, selected bool) string {
	marker := "  "
	if selected {
		marker = "▶ "
	}
	e, ok := c.Primary()
	if !ok {
		return marker + "(no entry)"
	}

	parts := []string{e.Date}
	if e.Flag != "" {
		parts = append(parts, e.Flag)
	}
	if e.Payee != nil && *e.Payee != "" {
		parts = append(parts, *e.Payee)
	}
	parts = append(parts, fmt.Sprintf("%q", e.Narration))
	for _, t := range e.Tags {
		parts = append(parts, "#"+t)
	}
	for _, l := range e.Links {
		parts = append(parts, "^"+l)
	}
	for _, s := range c.SubstitutedAccounts {
		parts = append(parts, keys.GroupKey(s.GroupNumber)+"="+s.AccountName)
	}
	return marker + strings.Join(parts, " ")
}

func (m Model) renderDetail() []string {
	c, _, ok := m.state.Selected()
	if !ok {
		return nil
	}
	e, ok := c.Primary()
	if !ok {
		return nil
	}

	groups := make(map[string]string, len(c.SubstitutedAccounts))
	for _, s := range c.SubstitutedAccounts {
		groups[s.AccountName] = keys.GroupKey(s.GroupNumber)
	}

	lines := []string{lipgloss.NewStyle().Foreground(m.theme.Border).Render(strings.Repeat("─", max(m.width, 1)))}
	for i, p := range e.Postings {
		if i == maxDetailRows {
			break
		}
		account := m.theme.Normal.Render(p.Account)
		label := "   "
		if g, ok := groups[p.Account]; ok {
			label = m.theme.GroupKey.Render("[" + g + "]")
			account = m.theme.Substitution.Render(p.Account)
		}
		units := ""
		if p.Units != nil {
			units = p.Units.String()
		}
		lines = append(lines, fmt.Sprintf("  %s %s  %s", label, account, units))
	}
	return lines
}

func (m Model) renderUsed() string {
	set := m.state.Candidates()
	if set == nil || len(set.UsedTransactions) == 0 {
		return ""
	}
	selected, _, _ := m.state.Selected()
	hovered, hasHover := m.state.Hovered()
	disabled := m.state.Disabled()
	focused := m.focus == keys.FocusUsedTransactions

	start := max(m.usedCursor-maxUsedRows+1, 0)
	end := min(start+maxUsedRows, len(set.UsedTransactions))

	rows := []string{m.theme.Bold.Render(fmt.Sprintf("Used transactions (%d ignored)", disabled.Len()))}
	for i := start; i < end; i++ {
		u := set.UsedTransactions[i]
		cursor := " "
		if focused && i == m.usedCursor {
			cursor = ">"
		}
		box := "[x]"
		if disabled.Has(u.ID) {
			box = "[ ]"
		}
		use := " "
		switch {
		case selected.Uses(u.ID):
			use = "*"
		case hasHover && hovered.Uses(u.ID):
			use = "~"
		}
		text := fmt.Sprintf("%s%s%s #%d %s %s", cursor, box, use, u.ID, u.Entry.Date, u.Entry.Narration)
		if len(u.Entry.Postings) > 0 && u.Entry.Postings[0].Units != nil {
			text += "  " + u.Entry.Postings[0].Units.String()
		}
		style := m.theme.Normal
		if disabled.Has(u.ID) {
			style = m.theme.Disabled
		}
		rows = append(rows, style.Render(text))
	}

	pane := m.theme.Pane
	if focused {
		pane = m.theme.FocusedPane
	}
	return pane.Width(max(m.width-2, 1)).Render(strings.Join(rows, "\n"))
}

func (m Model) renderEditor() []string {
	lines := []string{m.theme.Bold.Render(m.editor.prompt+": ") + m.editor.input.View()}
	if m.editor.mode != editorAccount {
		return lines
	}
	for i, s := range m.editor.matches(m.config.MaxSuggested) {
		style := m.theme.Suggestion
		if i == 0 {
			style = m.theme.BestSuggestion
		}
		lines = append(lines, "    "+style.Render(s))
	}
	return lines
}

func (m Model) renderStatusBar() string {
	left := m.theme.StatusInfo.Render(m.status)
	if m.statusErr {
		left = m.theme.StatusError.Render(m.status)
	}
	right := "offline"
	if m.connected {
		right = "connected"
	}
	if m.config.Server != "" {
		right += " " + m.config.Server
	}
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return m.theme.StatusBar.
		Width(m.width).
		MaxWidth(m.width).
		Render(left + strings.Repeat(" ", gap) + lipgloss.NewStyle().Foreground(m.theme.Muted).Render(right))
}

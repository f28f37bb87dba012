package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bekirdag/jobtracker/internal/coltype"
	"github.com/bekirdag/jobtracker/internal/options"
	"github.com/bekirdag/jobtracker/internal/tableview"
)

// optionsPanel manages the option list of one select column.
type optionsPanel struct {
	col    string
	cursor int
	// label the pending rename or color prompt applies to
	target string
}

func (m *model) openOptions(col string) tea.Cmd {
	tab := m.current()
	def := tab.ctrl.Type(col)
	if _, ok := def.(coltype.OptionSource); !ok {
		m.setToast(tab.ctrl.Label(col)+" has no option list", toastDuration)
		return nil
	}
	m.optPanel = &optionsPanel{col: col}
	return nil
}

func (m *model) closeOptions() {
	m.optPanel = nil
}

// optionSource returns the column type, option source and context of the
// open panel.
func (m *model) optionSource() (coltype.ColumnType, coltype.OptionSource, *coltype.Context, bool) {
	if m.optPanel == nil {
		return nil, nil, nil, false
	}
	tab := m.current()
	def := tab.ctrl.Type(m.optPanel.col)
	src, ok := def.(coltype.OptionSource)
	if !ok {
		return nil, nil, nil, false
	}
	return def, src, tab.ctrl.Context(m.optPanel.col), true
}

func (m *model) panelOptions() []options.Option {
	_, src, ctx, ok := m.optionSource()
	if !ok {
		return nil
	}
	return src.Options(ctx)
}

func (m *model) panelActions() options.Actions {
	_, src, ctx, ok := m.optionSource()
	if !ok {
		return nil
	}
	return src.SelectActions(ctx)
}

func (m *model) panelPolicy() coltype.OverridePolicy {
	def, _, _, ok := m.optionSource()
	if !ok {
		return coltype.OverridePolicy{}
	}
	return def.Policy()
}

// selectedOption is the option under the panel cursor.
func (m *model) selectedOption() (options.Option, bool) {
	opts := m.panelOptions()
	if m.optPanel == nil || len(opts) == 0 {
		return options.Option{}, false
	}
	m.optPanel.cursor = max(0, min(m.optPanel.cursor, len(opts)-1))
	return opts[m.optPanel.cursor], true
}

func (m *model) handleOptionsKey(msg tea.KeyMsg) tea.Cmd {
	p := m.optPanel
	actions := m.panelActions()
	if actions == nil {
		m.closeOptions()
		m.setToast("Options cannot be changed here", toastDuration)
		return nil
	}
	opts := m.panelOptions()
	label := m.current().ctrl.Label(p.col)
	ctx := context.Background()
	switch msg.String() {
	case "esc", "q", "o":
		m.closeOptions()
	case "tab":
		m.switchTab(1)
	case "shift+tab":
		m.switchTab(-1)
	case "up", "k":
		p.cursor = max(p.cursor-1, 0)
	case "down", "j":
		p.cursor = min(p.cursor+1, max(len(opts)-1, 0))
	case "a":
		if !m.panelPolicy().AllowAdd {
			m.setToast(label+" does not take new options", toastDuration)
			return nil
		}
		m.openInput("New option for "+label, "", inputOptionAdd)
		return textinput.Blink
	case "r":
		opt, ok := m.selectedOption()
		if !ok || !opt.Editable || !m.panelPolicy().AllowRelabel {
			m.setToast("This option cannot be renamed", toastDuration)
			return nil
		}
		p.target = opt.Label
		m.openInput("Rename "+opt.Label, opt.Label, inputOptionRename)
		return textinput.Blink
	case "c":
		opt, ok := m.selectedOption()
		if !ok || !opt.Editable {
			return nil
		}
		p.target = opt.Label
		m.openInput("Color for "+opt.Label+" (#RRGGBB)", opt.Color, inputOptionColor)
		return textinput.Blink
	case "d":
		opt, ok := m.selectedOption()
		if !ok || !opt.Editable {
			return nil
		}
		actions.Delete(ctx, opt.Label)
		p.cursor = max(0, min(p.cursor, len(m.panelOptions())-1))
		m.current().grid.refresh()
		m.setToast(fmt.Sprintf("Deleted option %q", opt.Label), toastDuration)
		m.appendLog(fmt.Sprintf("[INFO] Deleted option %q from %s", opt.Label, label))
	case "K", "shift+up":
		if p.cursor > 0 && p.cursor < len(opts) {
			actions.Reorder(ctx, opts[p.cursor].Label, opts[p.cursor-1].Label)
			p.cursor--
		}
	case "J", "shift+down":
		if p.cursor+1 < len(opts) {
			actions.Reorder(ctx, opts[p.cursor+1].Label, opts[p.cursor].Label)
			p.cursor++
		}
	}
	return nil
}

// submitOption applies an add, rename or color prompt of the panel.
func (m *model) submitOption(mode inputMode, value string) {
	p := m.optPanel
	actions := m.panelActions()
	if p == nil || actions == nil {
		return
	}
	tab := m.current()
	label := tab.ctrl.Label(p.col)
	ctx := context.Background()
	switch mode {
	case inputOptionAdd:
		created, ok := actions.Create(ctx, value)
		if !ok {
			m.setToast("Option not added", toastDuration)
			return
		}
		if idx := options.Find(m.panelOptions(), created); idx >= 0 {
			p.cursor = idx
		}
		m.appendLog(fmt.Sprintf("[INFO] Added option %q to %s", created, label))
	case inputOptionRename:
		from := p.target
		to, ok := actions.Rename(ctx, from, value)
		if !ok {
			if to != "" {
				m.setToast(fmt.Sprintf("%q is already an option", to), toastDuration)
			} else {
				m.setToast("Option not renamed", toastDuration)
			}
			return
		}
		n := m.relabelCells(tab.ctrl, p.col, from, to)
		m.appendLog(fmt.Sprintf("[INFO] Renamed option %q to %q in %s (%d cells)", from, to, label, n))
	case inputOptionColor:
		color := strings.TrimSpace(value)
		if !isHexColor(color) {
			m.setToast(fmt.Sprintf("%q is not a #RRGGBB color", color), toastDuration)
			return
		}
		actions.UpdateColor(ctx, p.target, color)
	}
	tab.grid.refresh()
}

// relabelCells rewrites cells holding from to the renamed option.
func (m *model) relabelCells(ctrl *tableview.Controller, col, from, to string) int {
	n := 0
	for _, r := range ctrl.Rows() {
		if options.Key(ctrl.Text(r, col)) != options.Key(from) {
			continue
		}
		var commitErr error
		if ctrl.CellArgs(r, col, func(err error) { commitErr = err }).Commit(to) && commitErr == nil {
			n++
		} else if commitErr != nil {
			m.log.Warn("relabel cell failed", "column", col, "err", commitErr)
		}
	}
	if n > 0 {
		m.reloadRows()
	}
	return n
}

func isHexColor(s string) bool {
	h, ok := strings.CutPrefix(s, "#")
	if !ok || (len(h) != 3 && len(h) != 6) {
		return false
	}
	_, err := strconv.ParseUint(h, 16, 32)
	return err == nil
}

func (m *model) renderOptions() string {
	p := m.optPanel
	tab := m.current()
	opts := m.panelOptions()
	lines := []string{m.styles.menuTitle.Render("Options · " + tab.ctrl.Label(p.col))}
	if len(opts) == 0 {
		lines = append(lines, m.styles.menuDisabled.Render("No options yet"))
	}
	for i, o := range opts {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(o.Color)).Render("●")
		style := m.styles.menuItem
		switch {
		case i == p.cursor:
			style = m.styles.menuSel
		case !o.Editable:
			style = m.styles.menuDisabled
		}
		lines = append(lines, swatch+" "+style.Render(o.Label))
	}
	hints := []string{"a add", "r rename", "c color", "d delete", "K/J move", "esc close"}
	lines = append(lines, m.styles.cmdHint.Render(strings.Join(hints, " • ")))
	return m.styles.menu.Render(strings.Join(lines, "\n"))
}

// optionsPosition anchors the panel under the column header.
func (m *model) optionsPosition(panel string) (int, int) {
	x := 0
	if cell, ok := m.current().grid.HeaderCell(m.optPanel.col); ok {
		x = cell.x
	}
	x = max(0, min(x, m.width-lipgloss.Width(panel)))
	return x, gridTop + 1
}

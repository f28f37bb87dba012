package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bekirdag/jobtracker/internal/store"
	"github.com/bekirdag/jobtracker/internal/tableview"
)

// viewStore keeps named table views. *store.Store implements it.
type viewStore interface {
	CreateView(ctx context.Context, name, viewType string, config []byte) (store.View, error)
	ListViews(ctx context.Context, viewType string) ([]store.View, error)
	UpdateView(ctx context.Context, id string, u store.ViewUpdate) (store.View, error)
	DeleteView(ctx context.Context, id string) error
}

// viewsPanel lists the saved views of the current table.
type viewsPanel struct {
	views  []store.View
	cursor int
	// id of the view the pending rename applies to
	target string
}

func (m *model) startSaveView() tea.Cmd {
	if m.views == nil {
		m.setToast("Saved views need the settings store", toastDuration)
		return nil
	}
	m.openInput("Save "+m.current().title+" view as", "", inputSaveView)
	return textinput.Blink
}

func (m *model) saveView(name string) {
	tab := m.current()
	config, err := json.Marshal(tab.ctrl.Snapshot())
	if err != nil {
		m.setToast("View not saved: "+err.Error(), toastDuration)
		return
	}
	v, err := m.views.CreateView(context.Background(), name, tab.id, config)
	if err != nil {
		m.setToast("View not saved: "+err.Error(), toastDuration)
		return
	}
	m.setToast(fmt.Sprintf("Saved view %q", v.Name), toastDuration)
	m.appendLog(fmt.Sprintf("[INFO] Saved view %q for %s", v.Name, tab.title))
}

func (m *model) openViews() tea.Cmd {
	if m.views == nil {
		m.setToast("Saved views need the settings store", toastDuration)
		return nil
	}
	m.viewPanel = &viewsPanel{}
	m.reloadViews()
	return nil
}

func (m *model) closeViews() {
	m.viewPanel = nil
}

func (m *model) reloadViews() {
	p := m.viewPanel
	if p == nil {
		return
	}
	views, err := m.views.ListViews(context.Background(), m.current().id)
	if err != nil {
		m.setToast("Views unavailable: "+err.Error(), toastDuration)
		m.log.Warn("list views failed", "table", m.current().id, "err", err)
	}
	p.views = views
	p.cursor = max(0, min(p.cursor, len(views)-1))
}

func (m *model) selectedView() (store.View, bool) {
	p := m.viewPanel
	if p == nil || len(p.views) == 0 {
		return store.View{}, false
	}
	return p.views[p.cursor], true
}

func (m *model) handleViewsKey(msg tea.KeyMsg) tea.Cmd {
	p := m.viewPanel
	ctx := context.Background()
	switch msg.String() {
	case "esc", "q", "v":
		m.closeViews()
	case "tab":
		m.switchTab(1)
	case "shift+tab":
		m.switchTab(-1)
	case "up", "k":
		p.cursor = max(p.cursor-1, 0)
	case "down", "j":
		p.cursor = min(p.cursor+1, max(len(p.views)-1, 0))
	case "enter":
		v, ok := m.selectedView()
		if !ok {
			return nil
		}
		m.applyView(v)
		m.closeViews()
	case "r":
		v, ok := m.selectedView()
		if !ok {
			return nil
		}
		p.target = v.ID
		m.openInput("Rename view "+v.Name, v.Name, inputRenameView)
		return textinput.Blink
	case "u":
		v, ok := m.selectedView()
		if !ok {
			return nil
		}
		config, err := json.Marshal(m.current().ctrl.Snapshot())
		if err == nil {
			_, err = m.views.UpdateView(ctx, v.ID, store.ViewUpdate{Config: config})
		}
		if err != nil {
			m.setToast("View not updated: "+err.Error(), toastDuration)
			return nil
		}
		m.setToast(fmt.Sprintf("Updated view %q", v.Name), toastDuration)
	case "d":
		v, ok := m.selectedView()
		if !ok {
			return nil
		}
		if err := m.views.DeleteView(ctx, v.ID); err != nil {
			m.setToast("View not deleted: "+err.Error(), toastDuration)
			return nil
		}
		m.reloadViews()
		m.setToast(fmt.Sprintf("Deleted view %q", v.Name), toastDuration)
		m.appendLog(fmt.Sprintf("[INFO] Deleted view %q", v.Name))
	}
	return nil
}

func (m *model) applyView(v store.View) {
	tab := m.current()
	snap, err := tableview.DecodeSnapshot(v.Config)
	if err != nil {
		m.setToast("View is unreadable: "+err.Error(), toastDuration)
		return
	}
	tab.ctrl.ApplySnapshot(snap)
	tab.grid.refresh()
	m.refreshPreview()
	m.setToast(fmt.Sprintf("Applied view %q", v.Name), toastDuration)
}

func (m *model) renameView(name string) {
	p := m.viewPanel
	if p == nil || p.target == "" {
		return
	}
	v, err := m.views.UpdateView(context.Background(), p.target, store.ViewUpdate{Name: &name})
	if err != nil {
		m.setToast("View not renamed: "+err.Error(), toastDuration)
		return
	}
	m.reloadViews()
	m.setToast(fmt.Sprintf("Renamed view to %q", v.Name), toastDuration)
}

func (m *model) renderViews() string {
	p := m.viewPanel
	lines := []string{m.styles.menuTitle.Render("Saved views · " + m.current().title)}
	if len(p.views) == 0 {
		lines = append(lines, m.styles.menuDisabled.Render("No saved views; press S on the table"))
	}
	for i, v := range p.views {
		style := m.styles.menuItem
		if i == p.cursor {
			style = m.styles.menuSel
		}
		lines = append(lines, style.Render(v.Name)+" "+m.styles.menuDisabled.Render(v.CreatedAt.Local().Format("Jan 2 15:04")))
	}
	hints := []string{"enter apply", "u update", "r rename", "d delete", "esc close"}
	lines = append(lines, m.styles.cmdHint.Render(strings.Join(hints, " • ")))
	return m.styles.menu.Render(strings.Join(lines, "\n"))
}

func (m *model) viewsPosition(panel string) (int, int) {
	x := max((m.width-lipgloss.Width(panel))/2, 0)
	return x, gridTop + 1
}

package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/meisai/internal/model"
	"github.com/Veraticus/meisai/internal/tui/themes"
)

// Workspace is the part of the session the review screen works on.
type Workspace interface {
	Rows() []model.Row
	Categories() model.CategorySet
	SetRowCategory(ctx context.Context, id, category string) (model.Row, error)
	Reclassify(ctx context.Context, force bool) (int, error)
}

// Model holds the review screen state. Category changes are kept locally in
// edits until the user saves.
type Model struct {
	ctx              context.Context
	workspace        Workspace
	err              error
	edits            map[string]string
	theme            themes.Theme
	status           string
	categories       model.CategorySet
	rows             []model.Row
	visible          []int
	help             help.Model
	keymap           KeyMap
	table            table.Model
	width            int
	height           int
	unclassifiedOnly bool
	saving           bool
	reclassifying    bool
	saved            bool
	quitting         bool
}

// newModel creates a model over the workspace's current rows.
func newModel(ctx context.Context, ws Workspace, cfg Config) Model {
	h := help.New()
	h.ShowAll = cfg.ShowHelp

	m := Model{
		ctx:        ctx,
		workspace:  ws,
		edits:      make(map[string]string),
		theme:      cfg.Theme,
		categories: ws.Categories(),
		rows:       ws.Rows(),
		help:       h,
		keymap:     DefaultKeyMap(),
		width:      cfg.Width,
		height:     cfg.Height,
	}

	m.table = table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = m.theme.Header
	styles.Selected = m.theme.Selected
	m.table.SetStyles(styles)

	m.refresh()
	m.resize()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		// Workspace calls must not overlap, so only force quit gets
		// through while a save or rerun is in flight.
		if m.busy() {
			if key.Matches(msg, m.keymap.ForceQuit) {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
		return m.handleKey(msg)

	case reclassifiedMsg:
		m.reclassifying = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.rows = m.overlay(msg.rows)
		m.status = pluralize(msg.changed, "row changed", "rows changed")
		m.refresh()
		return m, nil

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.saved = true
		m.quitting = true
		m.status = pluralize(msg.saved, "edit saved", "edits saved")
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Save):
		m.saving = true
		m.status = "saving..."
		return m, m.save()

	case key.Matches(msg, m.keymap.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keymap.PrevCategory):
		m.cycleCategory(-1)
		return m, nil

	case key.Matches(msg, m.keymap.NextCategory):
		m.cycleCategory(1)
		return m, nil

	case key.Matches(msg, m.keymap.ToggleFilter):
		m.unclassifiedOnly = !m.unclassifiedOnly
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keymap.Reclassify):
		m.reclassifying = true
		m.status = "rerunning rules..."
		return m, m.reclassify()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// cycleCategory moves the selected row's category by step through the
// category set and marks the row as edited.
func (m *Model) cycleCategory(step int) {
	idx, ok := m.selected()
	if !ok {
		return
	}

	labels := m.categories.Labels()
	n := len(labels)
	pos := m.categories.Index(m.rows[idx].Category)
	switch {
	case pos < 0 && step > 0:
		pos = 0
	case pos < 0:
		pos = n - 1
	default:
		pos = ((pos+step)%n + n) % n
	}

	row := &m.rows[idx]
	row.Category = labels[pos]
	row.Locked = true
	m.edits[row.ID] = row.Category
	m.status = ""
	m.table.SetRows(m.tableRows())
}

// selected returns the index into rows of the highlighted table row.
func (m Model) selected() (int, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.visible) {
		return 0, false
	}
	return m.visible[cursor], true
}

// refresh recomputes which rows are shown and keeps the cursor in range.
func (m *Model) refresh() {
	m.visible = m.visible[:0]
	sentinel := m.categories.Sentinel()
	for i, row := range m.rows {
		if m.unclassifiedOnly && row.Category != sentinel {
			continue
		}
		m.visible = append(m.visible, i)
	}

	m.table.SetRows(m.tableRows())
	if cursor := m.table.Cursor(); cursor >= len(m.visible) {
		m.table.SetCursor(max(len(m.visible)-1, 0))
	}
}

// overlay reapplies unsaved edits on top of rows read from the workspace.
func (m Model) overlay(rows []model.Row) []model.Row {
	for i := range rows {
		if category, ok := m.edits[rows[i].ID]; ok {
			rows[i].Category = category
			rows[i].Locked = true
		}
	}
	return rows
}

func (m Model) busy() bool {
	return m.saving || m.reclassifying
}

// Saved reports whether the user saved before leaving.
func (m Model) Saved() bool {
	return m.saved
}

// Edits returns the number of rows changed on this screen.
func (m Model) Edits() int {
	return len(m.edits)
}

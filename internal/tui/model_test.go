package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/meisai/internal/engine"
	"github.com/Veraticus/meisai/internal/model"
	"github.com/Veraticus/meisai/internal/testutil"
)

func setupReview(t *testing.T) (Model, *engine.Session) {
	t.Helper()

	session, _ := testutil.SetupTestSession(t, testutil.SessionOptions{Rules: testutil.TestRules})
	testutil.AnalyzeCSV(t, session, "jan.csv", testutil.StatementCSV)

	return newModel(context.Background(), session, defaultConfig()), session
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestReview_CycleCategoryIsLocalUntilSaved(t *testing.T) {
	m, session := setupReview(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})

	assert.Equal(t, "Fuel", m.rows[0].Category)
	assert.True(t, m.rows[0].Locked)
	assert.Equal(t, 1, m.Edits())
	assert.Equal(t, "Travel", session.Rows()[0].Category)
	assert.False(t, session.Rows()[0].Locked)
}

func TestReview_CycleWrapsAround(t *testing.T) {
	m, _ := setupReview(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 2, m.table.Cursor())
	require.Equal(t, model.DefaultSentinel, m.rows[2].Category)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "Books", m.rows[2].Category)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, model.DefaultSentinel, m.rows[2].Category)
	assert.True(t, m.rows[2].Locked)
}

func TestReview_FilterAndSave(t *testing.T) {
	m, session := setupReview(t)

	m, _ = press(t, m, runes("u"))
	require.True(t, m.unclassifiedOnly)
	require.Len(t, m.visible, 1)
	assert.Equal(t, 2, m.visible[0])

	m, _ = press(t, m, runes("l"))
	assert.Equal(t, "Travel", m.rows[2].Category)

	m, cmd := press(t, m, runes("s"))
	require.NotNil(t, cmd)
	assert.True(t, m.saving)

	msg := cmd()
	saved, ok := msg.(savedMsg)
	require.True(t, ok)
	require.NoError(t, saved.err)
	assert.Equal(t, 1, saved.saved)

	m, cmd = press(t, m, saved)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.Saved())
	assert.Empty(t, m.View())

	row := session.Rows()[2]
	assert.Equal(t, "Travel", row.Category)
	assert.True(t, row.Locked)
}

func TestReview_QuitDiscardsEdits(t *testing.T) {
	m, session := setupReview(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, cmd := press(t, m, runes("q"))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.Saved())
	assert.Equal(t, "Travel", session.Rows()[0].Category)
}

func TestReview_ReclassifyKeepsLocalEdits(t *testing.T) {
	m, session := setupReview(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})

	_, err := session.UpsertRule(context.Background(), "STARBUCKS", "Food")
	require.NoError(t, err)

	m, cmd := press(t, m, runes("r"))
	require.NotNil(t, cmd)

	msg, ok := cmd().(reclassifiedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)

	m, _ = press(t, m, msg)
	assert.Equal(t, "Fuel", m.rows[0].Category)
	assert.Equal(t, "Food", m.rows[2].Category)
	assert.NoError(t, m.err)
}

func TestReview_SaveErrorKeepsScreenOpen(t *testing.T) {
	m, _ := setupReview(t)

	m.saving = true
	m, cmd := press(t, m, savedMsg{err: errors.New("disk full")})

	assert.Nil(t, cmd)
	assert.False(t, m.saving)
	assert.False(t, m.Saved())
	assert.Contains(t, m.View(), "disk full")
}

func TestReview_FooterWarnsAboutUnclassified(t *testing.T) {
	m, _ := setupReview(t)

	view := m.View()
	assert.Contains(t, view, "3 rows")
	assert.Contains(t, view, "1 unclassified")
	assert.Contains(t, view, "¥480")
}

func TestReview_ForceQuitWhileSaving(t *testing.T) {
	m, _ := setupReview(t)

	m, _ = press(t, m, runes("s"))
	require.True(t, m.saving)

	m, cmd := press(t, m, runes("q"))
	assert.Nil(t, cmd)

	_, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRun_RequiresRows(t *testing.T) {
	session, _ := testutil.SetupTestSession(t, testutil.SessionOptions{})

	_, err := Run(context.Background(), session)
	assert.Error(t, err)
}

func TestReview_KeysBlockedWhileReclassifying(t *testing.T) {
	m, session := setupReview(t)

	m, rerun := press(t, m, runes("r"))
	require.NotNil(t, rerun)
	require.True(t, m.reclassifying)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Nil(t, cmd)
	assert.Equal(t, "Travel", m.rows[0].Category)
	assert.Zero(t, m.Edits())

	m, cmd = press(t, m, runes("s"))
	assert.Nil(t, cmd)
	assert.False(t, m.saving)

	m, cmd = press(t, m, runes("r"))
	assert.Nil(t, cmd)

	m, _ = press(t, m, rerun())
	assert.False(t, m.reclassifying)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, save := press(t, m, runes("s"))
	require.NotNil(t, save)

	saved, ok := save().(savedMsg)
	require.True(t, ok)
	require.NoError(t, saved.err)

	row := session.Rows()[0]
	assert.Equal(t, "Fuel", row.Category)
	assert.True(t, row.Locked)
}

func TestReview_FailedReclassifyUnblocks(t *testing.T) {
	m, _ := setupReview(t)

	m, _ = press(t, m, runes("r"))
	m, _ = press(t, m, reclassifiedMsg{err: errors.New("store down")})

	assert.False(t, m.reclassifying)
	assert.Contains(t, m.View(), "store down")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.Edits())
}

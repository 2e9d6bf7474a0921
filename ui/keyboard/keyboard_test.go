package keyboard

import (
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attached(value string, cursor int) (*Model, *textinput.Model) {
	ti := textinput.New()
	ti.SetValue(value)
	ti.SetCursor(cursor)
	kb := New()
	kb.Attach("username", &ti)
	return &kb, &ti
}

func TestPressInsertsAtCursor(t *testing.T) {
	kb, ti := attached("ac", 1)

	assert.Nil(t, kb.Press("b"))
	assert.Equal(t, "abc", ti.Value())
	assert.Equal(t, 2, ti.Position())

	kb.Press(KeySpace)
	assert.Equal(t, "ab c", ti.Value())
	assert.Equal(t, 3, ti.Position())
}

func TestPressBackspace(t *testing.T) {
	kb, ti := attached("abc", 2)

	kb.Press(KeyBackspace)
	assert.Equal(t, "ac", ti.Value())
	assert.Equal(t, 1, ti.Position())

	ti.SetCursor(0)
	kb.Press(KeyBackspace)
	assert.Equal(t, "ac", ti.Value())
}

func TestPressEnterSubmitsAndHides(t *testing.T) {
	kb, ti := attached("alice", 5)

	cmd := kb.Press(KeyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, SubmitMsg{Owner: "username"}, cmd())
	assert.False(t, kb.Visible())
	assert.Equal(t, "alice", ti.Value())
}

func TestPressWithoutOwner(t *testing.T) {
	kb := New()
	assert.Nil(t, kb.Press("a"))
}

func TestArrowNavigation(t *testing.T) {
	kb, _ := attached("", 0)
	assert.Equal(t, "1", kb.Selected())

	handled, _ := kb.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.True(t, handled)
	assert.Equal(t, KeyBackspace, kb.Selected())

	// moving into a shorter row clamps the column
	kb.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, KeyEnter, kb.Selected())

	kb.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "2", kb.Selected())

	kb.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "3", kb.Selected())

	handled, _ = kb.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.False(t, handled)
}

func TestEnterPressesSelectedKey(t *testing.T) {
	kb, ti := attached("", 0)
	kb.Update(tea.KeyMsg{Type: tea.KeyDown})

	handled, cmd := kb.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, handled)
	assert.Nil(t, cmd)
	assert.Equal(t, "q", ti.Value())
}

func TestMouseHitTesting(t *testing.T) {
	kb, ti := attached("", 0)
	kb.SetOrigin(2, 10)

	// each cap is the label plus one cell of padding either side, caps are a cell apart
	row, col, ok := kb.KeyAt(2, 10)
	require.True(t, ok)
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)

	row, col, ok = kb.KeyAt(6, 11)
	require.True(t, ok)
	assert.Equal(t, "w", Layout[row][col])

	_, _, ok = kb.KeyAt(5, 10)
	assert.False(t, ok, "gap between caps")
	_, _, ok = kb.KeyAt(2, 9)
	assert.False(t, ok, "above the keyboard")
	_, _, ok = kb.KeyAt(2, 15)
	assert.False(t, ok, "below the keyboard")

	handled, _ := kb.Update(tea.MouseMsg{X: 7, Y: 12, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.True(t, handled)
	assert.Equal(t, "s", ti.Value())
	assert.Equal(t, "s", kb.Selected())

	handled, _ = kb.Update(tea.MouseMsg{X: 7, Y: 12, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	assert.False(t, handled)
}

func TestHiddenKeyboardIgnoresInput(t *testing.T) {
	kb, ti := attached("", 0)
	kb.Hide()

	handled, _ := kb.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, handled)
	assert.Empty(t, ti.Value())
	assert.Empty(t, kb.View())
}

func TestViewRendersEveryKey(t *testing.T) {
	kb, _ := attached("", 0)
	view := kb.View()
	for _, row := range Layout {
		for _, key := range row {
			assert.Contains(t, view, key)
		}
	}
}

// Package keyboard is an on-screen keyboard for touch screens without a physical one. It edits
// whichever text input currently owns it.
package keyboard

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aouyang1/magicframe/ui/styles"
)

const (
	KeyBackspace = "Backspace"
	KeySpace     = "Space"
	KeyEnter     = "Enter"
)

// Layout is the key grid, top row first
var Layout = [][]string{
	{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0", KeyBackspace},
	{"q", "w", "e", "r", "t", "y", "u", "i", "o", "p"},
	{"a", "s", "d", "f", "g", "h", "j", "k", "l", "@"},
	{"z", "x", "c", "v", "b", "n", "m", ".", "_", "-"},
	{KeySpace, KeyEnter},
}

// SubmitMsg is sent when Enter is pressed on the keyboard
type SubmitMsg struct {
	Owner string
}

type Model struct {
	rows [][]string

	row int
	col int

	visible bool
	ownerID string
	owner   *textinput.Model

	// screen position of the top left key, for mouse hit-testing
	x int
	y int
}

func New() Model {
	return Model{rows: Layout}
}

// Attach shows the keyboard and directs its keys to owner
func (m *Model) Attach(id string, owner *textinput.Model) {
	m.ownerID = id
	m.owner = owner
	m.visible = true
}

func (m *Model) Hide() {
	m.visible = false
}

func (m *Model) Visible() bool {
	return m.visible
}

func (m *Model) Owner() string {
	return m.ownerID
}

// SetOrigin records where the caller drew View
func (m *Model) SetOrigin(x, y int) {
	m.x, m.y = x, y
}

// Selected is the key highlighted for arrow navigation
func (m *Model) Selected() string {
	return m.rows[m.row][m.col]
}

// Update handles navigation keys and mouse presses. handled reports whether msg was consumed so
// the caller does not forward it to the focused input as well.
func (m *Model) Update(msg tea.Msg) (bool, tea.Cmd) {
	if !m.visible {
		return false, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "left":
			m.col = (m.col - 1 + len(m.rows[m.row])) % len(m.rows[m.row])
		case "right":
			m.col = (m.col + 1) % len(m.rows[m.row])
		case "up":
			m.moveRow(-1)
		case "down":
			m.moveRow(1)
		case "enter":
			return true, m.Press(m.Selected())
		default:
			return false, nil
		}
		return true, nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return false, nil
		}
		row, col, ok := m.KeyAt(msg.X, msg.Y)
		if !ok {
			return false, nil
		}
		m.row, m.col = row, col
		return true, m.Press(m.rows[row][col])
	}
	return false, nil
}

func (m *Model) moveRow(delta int) {
	m.row = (m.row + delta + len(m.rows)) % len(m.rows)
	if m.col >= len(m.rows[m.row]) {
		m.col = len(m.rows[m.row]) - 1
	}
}

// Press applies key to the owning input. Enter hides the keyboard and returns a command
// delivering SubmitMsg.
func (m *Model) Press(key string) tea.Cmd {
	if m.owner == nil {
		return nil
	}

	switch key {
	case KeyEnter:
		m.visible = false
		owner := m.ownerID
		return func() tea.Msg {
			return SubmitMsg{Owner: owner}
		}
	case KeyBackspace:
		value := []rune(m.owner.Value())
		pos := min(m.owner.Position(), len(value))
		if pos == 0 {
			return nil
		}
		m.owner.SetValue(string(value[:pos-1]) + string(value[pos:]))
		m.owner.SetCursor(pos - 1)
	case KeySpace:
		m.insert(" ")
	default:
		m.insert(key)
	}
	return nil
}

func (m *Model) insert(s string) {
	value := []rune(m.owner.Value())
	pos := min(m.owner.Position(), len(value))
	m.owner.SetValue(string(value[:pos]) + s + string(value[pos:]))
	m.owner.SetCursor(pos + len([]rune(s)))
}

// KeyAt maps a screen cell to the key drawn there
func (m *Model) KeyAt(x, y int) (int, int, bool) {
	row := y - m.y
	if row < 0 || row >= len(m.rows) {
		return 0, 0, false
	}
	left := m.x
	for col, key := range m.rows[row] {
		w := keyWidth(key)
		if x >= left && x < left+w {
			return row, col, true
		}
		left += w + 1
	}
	return 0, 0, false
}

func keyWidth(key string) int {
	return lipgloss.Width(styles.KeyStyle.Render(key))
}

func (m *Model) View() string {
	if !m.visible {
		return ""
	}

	lines := make([]string, 0, len(m.rows))
	for r, keys := range m.rows {
		caps := make([]string, 0, len(keys))
		for c, key := range keys {
			if r == m.row && c == m.col {
				caps = append(caps, styles.SelectedKeyStyle.Render(key))
			} else {
				caps = append(caps, styles.KeyStyle.Render(key))
			}
		}
		lines = append(lines, strings.Join(caps, " "))
	}
	return strings.Join(lines, "\n")
}

package menu

import (
	"fmt"
	"sync"

	"github.com/holodemo/arcmesh/pkg/tessellate"
)

// Menu is a ring of buttons revealed on tap. A tap shows the menu only
// while no button has focus; selecting a button hides the menu again.
type Menu struct {
	Name string

	mu       sync.Mutex
	buttons  []*Button
	byName   map[string]*Button
	reveal   *Reveal
	focused  *Button
	onSelect func(*Button)
}

// New returns a hidden menu over buttons, revealed in the given order.
func New(name string, buttons []*Button) *Menu {
	m := &Menu{
		Name:    name,
		buttons: buttons,
		byName:  make(map[string]*Button, len(buttons)),
		reveal:  NewReveal(len(buttons)),
	}
	for _, b := range buttons {
		m.byName[b.Name] = b
	}
	return m
}

// FromPlacements builds a menu with one button per segment placement,
// using the segment's materials and label.
func FromPlacements(name string, ps []tessellate.Placement) *Menu {
	buttons := make([]*Button, 0, len(ps))
	for _, p := range ps {
		b := NewButton(p.Name, p.Segment.Material, p.Segment.AltMaterial)
		b.Label = p.Segment.Label
		buttons = append(buttons, b)
	}
	return New(name, buttons)
}

// OnSelect registers fn to run when a button is selected.
func (m *Menu) OnSelect(fn func(*Button)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSelect = fn
}

// Buttons returns the buttons in reveal order.
func (m *Menu) Buttons() []*Button {
	return m.buttons
}

// Button returns the named button, or nil.
func (m *Menu) Button(name string) *Button {
	return m.byName[name]
}

// Reveal returns the menu's reveal animation.
func (m *Menu) Reveal() *Reveal {
	return m.reveal
}

// Active reports whether the menu is shown.
func (m *Menu) Active() bool {
	return m.reveal.Shown()
}

// Tap handles a tap in empty space. It shows the menu if nothing has
// focus and the menu is hidden, and reports whether it did.
func (m *Menu) Tap() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.focused != nil || m.reveal.Shown() {
		return false
	}
	m.reveal.Start()
	return true
}

// Toggle hides a shown menu, clearing focus, or reveals a hidden one the
// way Tap does. It reports whether the menu is shown afterwards.
func (m *Menu) Toggle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reveal.Shown() {
		m.blurLocked()
		m.reveal.Hide()
		return false
	}
	if m.focused != nil {
		return false
	}
	m.reveal.Start()
	return true
}

// Hide hides the menu and clears focus.
func (m *Menu) Hide() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blurLocked()
	m.reveal.Hide()
}

// Focus gives the named button focus, blurring the previous one.
func (m *Menu) Focus(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.byName[name]
	if b == nil {
		return fmt.Errorf("menu %s: no button %q", m.Name, name)
	}
	if b == m.focused {
		return nil
	}
	m.blurLocked()
	m.focused = b
	b.ShowAlternative()
	return nil
}

// Blur removes focus from the focused button, if any.
func (m *Menu) Blur() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blurLocked()
}

// Focused returns the focused button, or nil.
func (m *Menu) Focused() *Button {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focused
}

// Select activates the named button: the menu hides and the select
// callback runs with the button.
func (m *Menu) Select(name string) (*Button, error) {
	m.mu.Lock()
	b := m.byName[name]
	if b == nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("menu %s: no button %q", m.Name, name)
	}
	m.blurLocked()
	m.reveal.Hide()
	fn := m.onSelect
	m.mu.Unlock()

	if fn != nil {
		fn(b)
	}
	return b, nil
}

// Material returns the material shown by the named button.
func (m *Menu) Material(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.byName[name]
	if b == nil {
		return "", fmt.Errorf("menu %s: no button %q", m.Name, name)
	}
	return b.Material(), nil
}

func (m *Menu) blurLocked() {
	if m.focused != nil {
		m.focused.ShowOriginal()
		m.focused = nil
	}
}

package menu

// Button tracks the material a segment button shows. Focus switches to
// the alternative material and blur back to the original. Linked buttons
// follow every change, which lets one button act as a flag for a group.
//
// Buttons are not safe for concurrent use on their own; Menu serializes
// access to the buttons it owns.
type Button struct {
	Name        string
	Label       string
	Original    string
	Alternative string

	current string
	linked  []*Button
}

// NewButton returns a button showing its original material.
func NewButton(name, original, alternative string) *Button {
	return &Button{
		Name:        name,
		Original:    original,
		Alternative: alternative,
		current:     original,
	}
}

// Material returns the material currently shown.
func (b *Button) Material() string {
	return b.current
}

// Link makes others show whatever material b switches to. Links are one
// way; changes on a linked button do not propagate back.
func (b *Button) Link(others ...*Button) {
	for _, o := range others {
		if o != nil && o != b {
			b.linked = append(b.linked, o)
		}
	}
}

// ShowOriginal switches to the original material.
func (b *Button) ShowOriginal() {
	b.update(b.Original)
}

// ShowAlternative switches to the alternative material.
func (b *Button) ShowAlternative() {
	b.update(b.Alternative)
}

// Switch flips between the original and the alternative material.
func (b *Button) Switch() {
	if b.current == b.Original {
		b.update(b.Alternative)
	} else {
		b.update(b.Original)
	}
}

// update sets mat on b and its linked buttons without following their
// own links, so cycles terminate. An empty material is ignored.
func (b *Button) update(mat string) {
	if mat == "" {
		return
	}
	for _, o := range b.linked {
		o.current = mat
	}
	b.current = mat
}

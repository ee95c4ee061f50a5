package tui

// MaxOffset exposes maxOffset for tests.
func (v *Vterm) MaxOffset() int {
	return v.maxOffset()
}

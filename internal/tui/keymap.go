package tui

import "charm.land/bubbles/v2/key"

// keyMap holds every binding of the layout screen.
type keyMap struct {
	quit          key.Binding
	cancel        key.Binding
	toggleHelp    key.Binding
	info          key.Binding
	selectLeft    key.Binding
	selectRight   key.Binding
	selectUp      key.Binding
	selectDown    key.Binding
	addColumn     key.Binding
	removeColumn  key.Binding
	removeCurrent key.Binding
	reset         key.Binding
	save          key.Binding
	load          key.Binding
	newPanel      key.Binding
	closePanel    key.Binding
	movePrevCol   key.Binding
	moveNextCol   key.Binding
	moveUp        key.Binding
	moveDown      key.Binding
	grow          key.Binding
	shrink        key.Binding
	copyLayout    key.Binding
}

// newKeyMap constructs the default bindings.
func newKeyMap() keyMap {
	return keyMap{
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		cancel:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel gesture")),
		toggleHelp:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		info:          key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "describe layout")),
		selectLeft:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		selectRight:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		selectUp:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "panel up")),
		selectDown:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "panel down")),
		addColumn:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add column")),
		removeColumn:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove last column")),
		removeCurrent: key.NewBinding(key.WithKeys("X", "shift+x"), key.WithHelp("X", "remove this column")),
		reset:         key.NewBinding(key.WithKeys("R", "shift+r"), key.WithHelp("R", "reset layout")),
		save:          key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		load:          key.NewBinding(key.WithKeys("L", "shift+l"), key.WithHelp("L", "load")),
		newPanel:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new panel")),
		closePanel:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "close panel")),
		movePrevCol:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move panel left")),
		moveNextCol:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move panel right")),
		moveUp:        key.NewBinding(key.WithKeys("K", "shift+k"), key.WithHelp("K", "move panel up")),
		moveDown:      key.NewBinding(key.WithKeys("J", "shift+j"), key.WithHelp("J", "move panel down")),
		grow:          key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "grow panel")),
		shrink:        key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "shrink panel")),
		copyLayout:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy layout json")),
	}
}

// ShortHelp returns the compact help line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addColumn, k.removeColumn, k.movePrevCol, k.moveNextCol, k.save, k.load, k.toggleHelp, k.quit,
	}
}

// FullHelp returns every binding grouped by concern.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.selectLeft, k.selectRight, k.selectUp, k.selectDown, k.cancel},
		{k.addColumn, k.removeColumn, k.removeCurrent, k.reset},
		{k.newPanel, k.closePanel, k.movePrevCol, k.moveNextCol, k.moveUp, k.moveDown, k.grow, k.shrink},
		{k.save, k.load, k.copyLayout, k.info, k.toggleHelp, k.quit},
	}
}

package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	quit, nextTable, prevTable         key.Binding
	up, down, left, right              key.Binding
	edit, toggle, menu, search         key.Binding
	add, remove, copyCell, export      key.Binding
	moveLeft, moveRight, widen, narrow key.Binding
	showHidden, clearFilters, preview  key.Binding
	toggleLogs, cycleTheme, toggleHelp key.Binding
	options, saveView, views           key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		nextTable: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next table"),
		),
		prevTable: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev table"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		edit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit cell"),
		),
		toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle group/checkbox"),
		),
		menu: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "column menu"),
		),
		options: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "column options"),
		),
		saveView: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "save view"),
		),
		views: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "saved views"),
		),
		search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add to-do"),
		),
		remove: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete to-do"),
		),
		copyCell: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy cell"),
		),
		export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export csv"),
		),
		moveLeft: key.NewBinding(
			key.WithKeys("shift+left", "<"),
			key.WithHelp("<", "move column left"),
		),
		moveRight: key.NewBinding(
			key.WithKeys("shift+right", ">"),
			key.WithHelp(">", "move column right"),
		),
		widen: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "widen column"),
		),
		narrow: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "narrow column"),
		),
		showHidden: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "show hidden"),
		),
		clearFilters: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear filters"),
		),
		preview: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "preview row"),
		),
		toggleLogs: key.NewBinding(
			key.WithKeys("f6"),
			key.WithHelp("F6", "toggle logs"),
		),
		cycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "preview theme"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.menu, k.edit, k.search, k.add, k.copyCell, k.toggleHelp, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right, k.nextTable, k.prevTable},
		{k.edit, k.toggle, k.menu, k.options, k.search, k.clearFilters, k.showHidden},
		{k.add, k.remove, k.copyCell, k.export, k.preview, k.saveView, k.views},
		{k.moveLeft, k.moveRight, k.widen, k.narrow, k.toggleLogs, k.cycleTheme, k.toggleHelp, k.quit},
	}
}

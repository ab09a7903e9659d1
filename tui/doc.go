// Package tui is a terminal front end for playing a level locally.
//
// The model drives a single engine.GameEngine. Moves that chain through
// conveyors or turnstiles are replayed one landing per frame, and keys
// pressed during the replay are dropped.
//
// Usage:
//
//	e, err := engine.NewEngine(level)
//	p := tea.NewProgram(tui.NewModel(e), tea.WithAltScreen())
//	_, err = p.Run()
package tui

package engine

import (
	"encoding/json"
	"fmt"
)

// ActorStatus is the terminal status of an actor on one grid traversal.
type ActorStatus int

const (
	StatusPlaying ActorStatus = iota
	StatusWon
	StatusLost
)

func (s ActorStatus) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusWon:
		return "won"
	case StatusLost:
		return "lost"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s ActorStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ActorStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "playing":
		*s = StatusPlaying
	case "won":
		*s = StatusWon
	case "lost":
		*s = StatusLost
	default:
		return fmt.Errorf("unknown actor status %q", text)
	}
	return nil
}

// Actor is the player on a grid. Its position changes only through the
// movement resolver. Won and Lost are terminal; a new attempt needs a new
// Actor.
type Actor struct {
	pos    Position
	status ActorStatus
	locked bool
}

// NewActor places a fresh actor on the grid's Start location.
func NewActor(g *Grid) *Actor {
	return &Actor{pos: g.Start()}
}

// Position returns the actor's current coordinate.
func (a *Actor) Position() Position { return a.pos }

// Status returns the actor's terminal status.
func (a *Actor) Status() ActorStatus { return a.status }

// Finished reports whether the actor has won or lost.
func (a *Actor) Finished() bool { return a.status != StatusPlaying }

// Locked reports whether a move is currently resolving.
func (a *Actor) Locked() bool { return a.locked }

// Movable reports whether the actor accepts new input.
func (a *Actor) Movable() bool {
	return !a.locked && a.status == StatusPlaying
}

// Clone returns an independent copy of the actor.
func (a *Actor) Clone() *Actor {
	c := *a
	return &c
}

// finish sets a terminal status once.
func (a *Actor) finish(status ActorStatus) {
	if a.status == StatusPlaying {
		a.status = status
	}
}

type actorJSON struct {
	Position Position    `json:"position"`
	Status   ActorStatus `json:"status"`
	Moving   bool        `json:"moving"`
}

func (a *Actor) MarshalJSON() ([]byte, error) {
	return json.Marshal(actorJSON{Position: a.pos, Status: a.status, Moving: a.locked})
}

func (a *Actor) UnmarshalJSON(data []byte) error {
	var raw actorJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.pos = raw.Position
	a.status = raw.Status
	a.locked = false
	return nil
}

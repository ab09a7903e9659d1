package engine

import "fmt"

// EventKind is the outcome of one movement input.
type EventKind int

const (
	EventMoved EventKind = iota + 1
	EventBlocked
	EventCollected
	EventWon
	EventLost
)

func (e EventKind) String() string {
	switch e {
	case EventMoved:
		return "moved"
	case EventBlocked:
		return "blocked"
	case EventCollected:
		return "collected"
	case EventWon:
		return "won"
	case EventLost:
		return "lost"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

func (e EventKind) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *EventKind) UnmarshalText(text []byte) error {
	for _, k := range []EventKind{EventMoved, EventBlocked, EventCollected, EventWon, EventLost} {
		if k.String() == string(text) {
			*e = k
			return nil
		}
	}
	return fmt.Errorf("unknown event %q", text)
}

// Rules are the per-level switches of the movement resolver.
type Rules struct {
	// TurnstilePush makes turnstiles deflect the actor through one of their
	// arms. When false turnstiles only rotate.
	TurnstilePush bool `json:"turnstile_push" yaml:"turnstile_push"`
}

// Step records one landing of the actor during a move.
type Step struct {
	Position Position  `json:"position"`
	Before   CellKind  `json:"before"`
	After    CellKind  `json:"after"`
	Event    EventKind `json:"event"`
	Push     Direction `json:"push,omitempty"`
}

// MoveResult is what one AttemptMove call produced.
type MoveResult struct {
	Event     EventKind `json:"event"`
	Direction Direction `json:"direction"`
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	Steps     []Step    `json:"steps,omitempty"`
	Collected int       `json:"collected,omitempty"`
	Truncated bool      `json:"truncated,omitempty"`
}

// Resolver reconciles movement input with cell effects. It holds no state
// between calls: the caller owns the Grid and the Actor.
type Resolver struct {
	rules Rules
}

// NewResolver creates a resolver applying rules.
func NewResolver(rules Rules) *Resolver {
	return &Resolver{rules: rules}
}

// Rules returns the resolver's rules.
func (r *Resolver) Rules() Rules {
	return r.rules
}

// AttemptMove resolves one input with the default rules.
func AttemptMove(g *Grid, a *Actor, d Direction) (MoveResult, error) {
	return NewResolver(Rules{}).AttemptMove(g, a, d)
}

// Enterable returns the neighbour of from in direction d and whether the
// actor may step onto it. Cells off the grid are walls.
func Enterable(g *Grid, from Position, d Direction) (Position, bool) {
	dx, dy := d.Delta()
	target := Position{X: from.X + dx, Y: from.Y + dy}

	kind, err := g.KindAt(target)
	if err != nil {
		return target, false
	}
	return target, !IsSolid(kind)
}

// AttemptMove moves the actor one cell in direction d and applies the
// effects of every cell it lands on, including chained conveyor pushes.
// The grid is mutated only for cells the actor actually entered.
func (r *Resolver) AttemptMove(g *Grid, a *Actor, d Direction) (MoveResult, error) {
	if !d.Valid() {
		return MoveResult{}, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	if a.Finished() {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrActorFinished, a.status)
	}
	if a.locked {
		return MoveResult{}, ErrActorBusy
	}

	a.locked = true
	defer func() { a.locked = false }()

	result := MoveResult{
		Event:     EventBlocked,
		Direction: d,
		From:      a.pos,
		To:        a.pos,
	}

	target, ok := Enterable(g, a.pos, d)
	if !ok {
		return result, nil
	}

	heading := d
	limit := g.Width() + g.Height()
	for landings := 1; ; landings++ {
		step, push, pushes := r.land(g, a, target, heading)
		result.Steps = append(result.Steps, step)
		if step.Event == EventCollected {
			result.Collected++
		}

		if a.Finished() || !pushes {
			break
		}
		next, ok := Enterable(g, target, push)
		if !ok {
			break
		}
		if landings >= limit {
			result.Truncated = true
			break
		}
		heading = push
		target = next
	}

	result.To = a.pos
	switch {
	case a.status == StatusLost:
		result.Event = EventLost
	case a.status == StatusWon:
		result.Event = EventWon
	case result.Collected > 0:
		result.Event = EventCollected
	default:
		result.Event = EventMoved
	}
	return result, nil
}

// land places the actor on target, evaluates the kind found there before
// any mutation, then applies the cell transition. It returns the recorded
// step and the direction of a follow-up push, if any.
func (r *Resolver) land(g *Grid, a *Actor, target Position, heading Direction) (Step, Direction, bool) {
	a.pos = target

	// target was checked by Enterable, KindAt cannot fail here.
	kind, _ := g.KindAt(target)
	step := Step{Position: target, Before: kind, Event: EventMoved}

	var push Direction
	pushes := false

	switch kind {
	case TrapSprung:
		step.Event = EventLost
		a.finish(StatusLost)
	case End:
		step.Event = EventWon
		a.finish(StatusWon)
	case Collectible:
		step.Event = EventCollected
	case ConveyorUp, ConveyorDown, ConveyorRight, ConveyorLeft:
		push, pushes = ConveyorDirection(kind)
	case TurnstileUpRight, TurnstileUpLeft, TurnstileDownRight, TurnstileDownLeft:
		if r.rules.TurnstilePush {
			push, pushes = deflect(kind, heading)
		}
	}

	// target was checked by Enterable and Next keeps kinds in range.
	step.After = Next(kind)
	g.cells[target.Y][target.X] = step.After
	if pushes {
		step.Push = push
	}
	return step, push, pushes
}

// deflect returns the arm a turnstile sends the actor through: horizontal
// entry leaves along the vertical arm, vertical entry along the horizontal
// one.
func deflect(kind CellKind, heading Direction) (Direction, bool) {
	vertical, horizontal, ok := TurnstileArms(kind)
	if !ok {
		return 0, false
	}
	if heading.Horizontal() {
		return vertical, true
	}
	return horizontal, true
}

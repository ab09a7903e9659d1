package engine

import (
	"fmt"
	"strings"
)

// CellKind is the category of a grid tile. The set is closed.
type CellKind int

const (
	Ground CellKind = iota + 1
	Grass
	Fence
	TrapArmed
	TrapSprung
	ConveyorUp
	ConveyorDown
	ConveyorRight
	ConveyorLeft
	TurnstileUpRight
	TurnstileUpLeft
	TurnstileDownRight
	TurnstileDownLeft
	Start
	End
	Collectible
	CollectibleConsumed
)

// Level codes are authored against this mapping, keep it stable.
const (
	MinCellCode = int(Ground)
	MaxCellCode = int(CollectibleConsumed)
)

var kindNames = map[CellKind]string{
	Ground:              "ground",
	Grass:               "grass",
	Fence:               "fence",
	TrapArmed:           "trap_armed",
	TrapSprung:          "trap_sprung",
	ConveyorUp:          "conveyor_up",
	ConveyorDown:        "conveyor_down",
	ConveyorRight:       "conveyor_right",
	ConveyorLeft:        "conveyor_left",
	TurnstileUpRight:    "turnstile_up_right",
	TurnstileUpLeft:     "turnstile_up_left",
	TurnstileDownRight:  "turnstile_down_right",
	TurnstileDownLeft:   "turnstile_down_left",
	Start:               "start",
	End:                 "end",
	Collectible:         "carrot",
	CollectibleConsumed: "carrot_hole",
}

// KindFromCode maps a level code (1..17) to its kind.
func KindFromCode(code int) (CellKind, bool) {
	if code < MinCellCode || code > MaxCellCode {
		return 0, false
	}
	return CellKind(code), true
}

// Code returns the level code for the kind.
func (k CellKind) Code() int {
	return int(k)
}

// Valid reports whether k is one of the enumerated kinds.
func (k CellKind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

func (k CellKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseCellKind accepts a kind name ("conveyor_left") case-insensitively.
func ParseCellKind(s string) (CellKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for kind, name := range kindNames {
		if name == s {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown cell kind %q", s)
}

// MarshalText encodes the kind by name so JSON views stay readable.
func (k CellKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown cell kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *CellKind) UnmarshalText(text []byte) error {
	kind, err := ParseCellKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// IsSolid reports whether the kind blocks entry. Only grass and fences do.
func IsSolid(k CellKind) bool {
	switch k {
	case Grass, Fence:
		return true
	default:
		return false
	}
}

// Next returns the kind a cell becomes once an actor enters it.
func Next(k CellKind) CellKind {
	switch k {
	case TrapArmed:
		return TrapSprung
	case Collectible:
		return CollectibleConsumed
	case TurnstileUpLeft:
		return TurnstileUpRight
	case TurnstileUpRight:
		return TurnstileDownRight
	case TurnstileDownRight:
		return TurnstileDownLeft
	case TurnstileDownLeft:
		return TurnstileUpLeft
	case Ground, Grass, Fence, TrapSprung,
		ConveyorUp, ConveyorDown, ConveyorRight, ConveyorLeft,
		Start, End, CollectibleConsumed:
		return k
	}
	return k
}

// IsConveyor reports whether the kind pushes the actor after landing.
func IsConveyor(k CellKind) bool {
	_, ok := ConveyorDirection(k)
	return ok
}

// ConveyorDirection returns the push direction of a conveyor kind.
func ConveyorDirection(k CellKind) (Direction, bool) {
	switch k {
	case ConveyorUp:
		return Up, true
	case ConveyorDown:
		return Down, true
	case ConveyorRight:
		return Right, true
	case ConveyorLeft:
		return Left, true
	default:
		return 0, false
	}
}

// IsTurnstile reports whether the kind is one of the four turnstile states.
func IsTurnstile(k CellKind) bool {
	_, _, ok := TurnstileArms(k)
	return ok
}

// TurnstileArms returns the open vertical and horizontal arms of a turnstile.
func TurnstileArms(k CellKind) (vertical, horizontal Direction, ok bool) {
	switch k {
	case TurnstileUpRight:
		return Up, Right, true
	case TurnstileUpLeft:
		return Up, Left, true
	case TurnstileDownRight:
		return Down, Right, true
	case TurnstileDownLeft:
		return Down, Left, true
	default:
		return 0, 0, false
	}
}

// Glyph is the single-character form used by text views and the MCP tools.
func (k CellKind) Glyph() string {
	switch k {
	case Ground:
		return "."
	case Grass:
		return "\""
	case Fence:
		return "#"
	case TrapArmed:
		return "^"
	case TrapSprung:
		return "X"
	case ConveyorUp:
		return "↑"
	case ConveyorDown:
		return "↓"
	case ConveyorRight:
		return "→"
	case ConveyorLeft:
		return "←"
	case TurnstileUpRight:
		return "└"
	case TurnstileUpLeft:
		return "┘"
	case TurnstileDownRight:
		return "┌"
	case TurnstileDownLeft:
		return "┐"
	case Start:
		return "S"
	case End:
		return "E"
	case Collectible:
		return "C"
	case CollectibleConsumed:
		return "o"
	default:
		return "?"
	}
}

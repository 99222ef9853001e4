package tetris

// Action is a player input understood by the engine.
type Action int

const (
	MoveLeft Action = iota
	MoveRight
	MoveDown
	RotateCW
	RotateCCW
	HardDrop
	Quit
)

var keyBindings = map[string]Action{
	"left":  MoveLeft,
	"right": MoveRight,
	"down":  MoveDown,
	"up":    RotateCW,
	"x":     RotateCW,
	"X":     RotateCW,
	"z":     RotateCCW,
	"Z":     RotateCCW,
	" ":     HardDrop,
	"space": HardDrop,
	"q":     Quit,
	"Q":     Quit,
}

// KeyAction maps a terminal key name to an action.
func KeyAction(key string) (Action, bool) {
	a, ok := keyBindings[key]
	return a, ok
}

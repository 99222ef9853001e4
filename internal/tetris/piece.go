package tetris

// Kind identifies one of the seven tetromino shapes.
type Kind int

const (
	I Kind = iota
	O
	T
	S
	Z
	J
	L
)

// Kinds lists every shape in factory order.
var Kinds = []Kind{I, O, T, S, Z, J, L}

// Mask is the occupied-cell layout of a piece inside its 4x4 bounding box,
// indexed [row][col].
type Mask [4][4]bool

var kindNames = map[Kind]string{I: "I", O: "O", T: "T", S: "S", Z: "Z", J: "J", L: "L"}

// ANSI 256 colours used when rendering settled and falling blocks.
var kindColors = map[Kind]string{
	I: "14", // cyan
	O: "11", // yellow
	T: "13", // magenta
	S: "10", // green
	Z: "9",  // red
	J: "12", // blue
	L: "208",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "?"
}

// Color returns the display colour of the shape as an ANSI colour code.
func (k Kind) Color() string {
	return kindColors[k]
}

// spawn orientations; rows are read top to bottom, '#' is occupied.
var baseShapes = map[Kind][]string{
	I: {"....", "####", "....", "...."},
	O: {".##.", ".##.", "....", "...."},
	T: {".#.", "###", "..."},
	S: {".##", "##.", "..."},
	Z: {"##.", ".##", "..."},
	J: {"#..", "###", "..."},
	L: {"..#", "###", "..."},
}

// rotationTable holds the four clockwise orientations of every kind.
var rotationTable = buildRotationTable()

func buildRotationTable() map[Kind][4]Mask {
	table := make(map[Kind][4]Mask, len(baseShapes))
	for kind, rows := range baseShapes {
		size := len(rows)
		var masks [4]Mask
		for r, row := range rows {
			for c, ch := range row {
				masks[0][r][c] = ch == '#'
			}
		}
		for rot := 1; rot < 4; rot++ {
			if kind == O {
				masks[rot] = masks[0]
				continue
			}
			masks[rot] = rotateMask(masks[rot-1], size)
		}
		table[kind] = masks
	}
	return table
}

// rotateMask turns the top-left size x size region of m a quarter turn clockwise.
func rotateMask(m Mask, size int) Mask {
	var out Mask
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			out[c][size-1-r] = m[r][c]
		}
	}
	return out
}

// Piece is a tetromino with a rotation state and the grid position of the
// top-left corner of its bounding box.
type Piece struct {
	Kind     Kind
	Rotation int
	X, Y     int
}

// NewPiece returns a piece of the given kind in its spawn orientation.
func NewPiece(kind Kind) Piece {
	return Piece{Kind: kind}
}

// Mask returns the occupied cells for the current rotation.
func (p Piece) Mask() Mask {
	return rotationTable[p.Kind][p.Rotation]
}

// Occupied reports whether the bounding-box cell (row, col) is filled.
func (p Piece) Occupied(row, col int) bool {
	if row < 0 || row >= 4 || col < 0 || col >= 4 {
		return false
	}
	return p.Mask()[row][col]
}

// RotateCW advances the rotation state. Position is left unchanged.
func (p *Piece) RotateCW() {
	p.Rotation = (p.Rotation + 1) % 4
}

// RotateCCW retreats the rotation state. Position is left unchanged.
func (p *Piece) RotateCCW() {
	p.Rotation = (p.Rotation + 3) % 4
}

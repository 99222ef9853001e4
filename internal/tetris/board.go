package tetris

// Cell is the content of one grid square: 0 when empty, otherwise the
// shape kind of the settled block plus one.
type Cell uint8

// Empty is the zero Cell.
const Empty Cell = 0

func cellFor(k Kind) Cell {
	return Cell(k) + 1
}

// Kind returns the shape that filled the cell, and false for empty cells.
func (c Cell) Kind() (Kind, bool) {
	if c == Empty {
		return 0, false
	}
	return Kind(c - 1), true
}

// Board owns the settled cells of a session.
type Board struct {
	width, height int
	cells         [][]Cell
}

// NewBoard creates an empty width x height board.
func NewBoard(width, height int) *Board {
	b := &Board{width: width, height: height, cells: make([][]Cell, height)}
	for y := range b.cells {
		b.cells[y] = make([]Cell, width)
	}
	return b
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

// At returns the cell at column x, row y. Out-of-range coordinates read as empty.
func (b *Board) At(x, y int) Cell {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Empty
	}
	return b.cells[y][x]
}

// CanPlace reports whether every occupied cell of p, offset to (x, y), lies
// inside the horizontal bounds, above the floor and on an empty square.
// Cells above the top edge are allowed.
func (b *Board) CanPlace(p Piece, x, y int) bool {
	mask := p.Mask()
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if !mask[row][col] {
				continue
			}
			gx, gy := x+col, y+row
			if gx < 0 || gx >= b.width || gy >= b.height {
				return false
			}
			if gy >= 0 && b.cells[gy][gx] != Empty {
				return false
			}
		}
	}
	return true
}

// Place copies the occupied cells of p into the grid at (x, y). The caller
// checks legality with CanPlace first; cells above the top edge are dropped.
func (b *Board) Place(p Piece, x, y int) {
	mask := p.Mask()
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if !mask[row][col] {
				continue
			}
			gx, gy := x+col, y+row
			if gy < 0 || gy >= b.height || gx < 0 || gx >= b.width {
				continue
			}
			b.cells[gy][gx] = cellFor(p.Kind)
		}
	}
}

// ClearFullLines removes every full row in one pass and collapses the rows
// above. It returns the number of rows removed.
func (b *Board) ClearFullLines() int {
	kept := make([][]Cell, 0, b.height)
	for _, row := range b.cells {
		if !isFull(row) {
			kept = append(kept, row)
		}
	}
	cleared := b.height - len(kept)
	if cleared == 0 {
		return 0
	}
	fresh := make([][]Cell, cleared, b.height)
	for i := range fresh {
		fresh[i] = make([]Cell, b.width)
	}
	b.cells = append(fresh, kept...)
	return cleared
}

func isFull(row []Cell) bool {
	for _, c := range row {
		if c == Empty {
			return false
		}
	}
	return true
}

// Rows returns a copy of the grid, top row first.
func (b *Board) Rows() [][]Cell {
	out := make([][]Cell, b.height)
	for y, row := range b.cells {
		out[y] = append([]Cell(nil), row...)
	}
	return out
}

package tetris

import "github.com/questguild/questguild/internal/dependencies/random"

// Factory produces pieces of uniformly random kind.
type Factory struct {
	rng random.Random
}

// NewFactory creates a Factory drawing from rng.
func NewFactory(rng random.Random) *Factory {
	return &Factory{rng: rng}
}

// RandomPiece returns an unrotated piece of a random kind.
func (f *Factory) RandomPiece() Piece {
	return NewPiece(random.Pick(f.rng, Kinds))
}

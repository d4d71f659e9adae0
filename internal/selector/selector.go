// Package selector picks moves for the automated side.
package selector

import (
	"math/rand/v2"
	"sync"

	"github.com/park285/Cheese-Board/internal/board"
	"github.com/park285/Cheese-Board/internal/rules"
)

// Selector chooses a move for active, or reports false when it has none.
type Selector interface {
	SelectMove(b board.Board, active board.Color) (board.Move, bool)
	Name() string
}

// Random picks uniformly among every legal move.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a selector drawing from rng. A nil rng uses the global source.
func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

// NewSeeded is NewRandom with a deterministic PCG source, for tests and replays.
func NewSeeded(seed1, seed2 uint64) *Random {
	return NewRandom(rand.New(rand.NewPCG(seed1, seed2)))
}

func (r *Random) SelectMove(b board.Board, active board.Color) (board.Move, bool) {
	moves := rules.LegalMoves(b, active)
	if len(moves) == 0 {
		return board.Move{}, false
	}
	return moves[r.intN(len(moves))], true
}

func (r *Random) Name() string { return "random" }

func (r *Random) intN(n int) int {
	if r == nil || r.rng == nil {
		return rand.IntN(n)
	}
	// *rand.Rand is not safe for concurrent use
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

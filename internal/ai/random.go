package ai

import (
    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "golang.org/x/exp/rand"
)

// RandomStrategy picks uniformly among the empty squares.
type RandomStrategy struct {
    r *rand.Rand
}

func NewRandomStrategy(seed uint64) *RandomStrategy {
    return &RandomStrategy{r: rand.New(rand.NewSource(seed))}
}

func (s *RandomStrategy) Choose(b domain.Board, _ domain.Cell) (Result, error) {
    moves := b.EmptySquares()
    if len(moves) == 0 {
        return Result{}, ErrNoMoves
    }
    return Result{Move: moves[s.r.Intn(len(moves))], HasMove: true, Nodes: 1}, nil
}

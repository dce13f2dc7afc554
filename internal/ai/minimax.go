package ai

import (
    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "golang.org/x/sync/errgroup"
)

// Scores outside the reachable range, used to seed the best-so-far.
const (
    maxSentinel = -999
    minSentinel = 999
)

// MinimaxStrategy searches the whole remaining game tree.
type MinimaxStrategy struct {
    Parallel bool
}

// Choose evaluates b for player. X is always the maximiser. An engine
// playing O searches with O to move (maximising=false); an engine playing
// X searches with X to move and O as the minimiser.
func (s *MinimaxStrategy) Choose(b domain.Board, player domain.Cell) (Result, error) {
    maximising, minimiser := false, player
    if player == domain.X {
        maximising, minimiser = true, domain.O
    }
    if s.Parallel {
        return MinimaxParallel(b, maximising, minimiser)
    }
    return MinimaxSearch(b, maximising, minimiser), nil
}

// MinimaxSearch is the exhaustive search. Maximising turns place X,
// minimising turns place minimiser. Ties keep the first move in row-major
// order.
func MinimaxSearch(b domain.Board, maximising bool, minimiser domain.Cell) Result {
    var nodes int
    res := minimax(b, maximising, minimiser, &nodes)
    res.Nodes = nodes
    return res
}

func evaluateTerminal(b *domain.Board) (int, bool) {
    switch b.FinalState() {
    case domain.X:
        return 1, true
    case domain.O:
        return -1, true
    }
    if b.IsFull() {
        return 0, true
    }
    return 0, false
}

func better(maximising bool, score, best int) bool {
    if maximising {
        return score > best
    }
    return score < best
}

func sideToMark(maximising bool, minimiser domain.Cell) domain.Cell {
    if maximising {
        return domain.X
    }
    return minimiser
}

func minimax(b domain.Board, maximising bool, minimiser domain.Cell, nodes *int) Result {
    *nodes++
    if score, done := evaluateTerminal(&b); done {
        return Result{Score: score}
    }

    best := Result{Score: minSentinel}
    if maximising {
        best.Score = maxSentinel
    }
    mark := sideToMark(maximising, minimiser)
    for _, m := range b.EmptySquares() {
        child := b
        if err := child.MarkSquare(m.Row, m.Col, mark); err != nil {
            // EmptySquares only yields empty in-range squares.
            panic(err)
        }
        score := minimax(child, !maximising, minimiser, nodes).Score
        if better(maximising, score, best.Score) {
            best = Result{Score: score, Move: m, HasMove: true}
        }
    }
    return best
}

// MinimaxParallel evaluates each root move on its own goroutine and reduces
// the results in scan order, so it returns exactly what MinimaxSearch does.
func MinimaxParallel(b domain.Board, maximising bool, minimiser domain.Cell) (Result, error) {
    if _, done := evaluateTerminal(&b); done {
        return MinimaxSearch(b, maximising, minimiser), nil
    }
    moves := b.EmptySquares()
    mark := sideToMark(maximising, minimiser)
    results := make([]Result, len(moves))

    var grp errgroup.Group
    for i, m := range moves {
        i, m := i, m
        grp.Go(func() error {
            child := b
            if err := child.MarkSquare(m.Row, m.Col, mark); err != nil {
                return err
            }
            results[i] = MinimaxSearch(child, !maximising, minimiser)
            return nil
        })
    }
    if err := grp.Wait(); err != nil {
        return Result{}, err
    }

    best := Result{Score: minSentinel, Nodes: 1}
    if maximising {
        best.Score = maxSentinel
    }
    for i, r := range results {
        best.Nodes += r.Nodes
        if better(maximising, r.Score, best.Score) {
            best.Score, best.Move, best.HasMove = r.Score, moves[i], true
        }
    }
    return best, nil
}

package app

import (
    "context"
    "errors"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/jaminalder/tictactoe-ai/internal/ai"
    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "github.com/jaminalder/tictactoe-ai/internal/storage"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

// Errors exposed by the service layer.
var (
    ErrNotFound    = errors.New("game not found")
    ErrNotYourTurn = errors.New("not your turn")
    ErrNotAPlayer  = errors.New("not a player")
)

// GameState is the in-memory state tracked per game.
type GameState struct {
    ID      string
    Game    Match
    X       string
    O       string
    Created time.Time
    Started time.Time
    Updated time.Time

    recorded bool
}

// Publisher receives game lifecycle events.
type Publisher interface {
    Publish(ctx context.Context, event, game string, payload map[string]any)
}

// sinkTimeout bounds the store write and event publish for one game.
const sinkTimeout = 5 * time.Second

type subscriber struct {
    mu     sync.Mutex
    ch     chan []byte
    closed bool
}

// send delivers without blocking; false means the buffer is full.
func (s *subscriber) send(b []byte) bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.closed {
        return true
    }
    select {
    case s.ch <- b:
        return true
    default:
        return false
    }
}

func (s *subscriber) close() {
    s.mu.Lock()
    defer s.mu.Unlock()
    if !s.closed {
        s.closed = true
        close(s.ch)
    }
}

// sinkContext detaches sink writes from the caller so a dropped request does
// not lose a finished game.
func sinkContext(ctx context.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
}

type Option func(s *Service)

// WithEngineOptions configures the engine created for every new game.
func WithEngineOptions(opts ...ai.Option) Option {
    return func(s *Service) {
        s.engineOpts = append(s.engineOpts, opts...)
    }
}

// WithStore records finished games.
func WithStore(st storage.Store) Option {
    return func(s *Service) {
        s.store = st
    }
}

func WithPublisher(p Publisher) Option {
    return func(s *Service) {
        s.publisher = p
    }
}

func WithLogger(logger zerolog.Logger) Option {
    return func(s *Service) {
        s.log = logger
    }
}

// Service manages games and subscribers.
type Service struct {
    mu     sync.Mutex
    games  map[string]*GameState
    subs   map[string]map[*subscriber]struct{}
    render func(GameState) []byte

    engineOpts []ai.Option
    store      storage.Store
    publisher  Publisher
    log        zerolog.Logger
}

// NewService creates a service with a default renderer (encodes nothing useful).
func NewService(opts ...Option) *Service { return NewServiceWithRenderer(nil, opts...) }

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(renderer func(GameState) []byte, opts ...Option) *Service {
    if renderer == nil {
        renderer = func(gs GameState) []byte { return nil }
    }
    s := &Service{
        games:  make(map[string]*GameState),
        subs:   make(map[string]map[*subscriber]struct{}),
        render: renderer,
        log:    log.Logger,
    }
    for _, opt := range opts {
        opt(s)
    }
    return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if renderer == nil {
        s.render = func(gs GameState) []byte { return nil }
        return
    }
    s.render = renderer
}

func (s *Service) newStateLocked(id string) *GameState {
    opts := append([]ai.Option{ai.WithLogger(s.log.With().Str("game", id).Logger())}, s.engineOpts...)
    now := time.Now()
    gs := &GameState{ID: id, Game: NewMatch(ai.New(opts...)), Created: now, Started: now, Updated: now}
    s.games[id] = gs
    return gs
}

// engineReply lets the engine move if it is due.
func (s *Service) engineReply(gs *GameState) error {
    if !gs.Game.EngineTurn() {
        return nil
    }
    _, err := gs.Game.EngineMove()
    return err
}

// CreateGame creates and registers a new game. An engine playing X opens.
func (s *Service) CreateGame(ctx context.Context) (*GameState, error) {
    s.mu.Lock()
    gs := s.newStateLocked(uuid.NewString())
    if err := s.engineReply(gs); err != nil {
        delete(s.games, gs.ID)
        s.mu.Unlock()
        return nil, err
    }
    cp := *gs
    s.mu.Unlock()

    s.log.Debug().Str("game", cp.ID).Stringer("mode", cp.Game.Mode).Msg("game created")
    if s.publisher != nil {
        ctx, cancel := sinkContext(ctx)
        defer cancel()
        s.publisher.Publish(ctx, "game_created", cp.ID, map[string]any{
            "mode":   cp.Game.Mode.String(),
            "level":  cp.Game.Level.String(),
            "engine": cp.Game.EnginePlayer.String(),
        })
    }
    return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return nil, false
    }
    cp := *gs
    return &cp, true
}

// Join assigns a seat to the player if available; returns Empty for spectators.
func (s *Service) Join(id, playerID string) (domain.Cell, *GameState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return domain.Empty, nil, ErrNotFound
    }
    side := domain.Empty
    if gs.X == "" || gs.X == playerID {
        gs.X = playerID
        side = domain.X
    } else if gs.O == "" || gs.O == playerID {
        gs.O = playerID
        side = domain.O
    }
    gs.Updated = time.Now()
    cp := *gs
    return side, &cp, nil
}

func seatOf(gs *GameState, playerID string) domain.Cell {
    switch {
    case playerID == "":
        return domain.Empty
    case gs.X == playerID:
        return domain.X
    case gs.O == playerID:
        return domain.O
    }
    return domain.Empty
}

// Play validates seat and turn, applies a move, lets the engine answer in AI
// mode, and broadcasts. Against the engine any seated player plays the human
// side.
func (s *Service) Play(ctx context.Context, id, playerID string, r, c int) (*GameState, error) {
    return s.update(ctx, id, func(gs *GameState) error {
        // Validate player is seated
        seat := seatOf(gs, playerID)
        if seat == domain.Empty {
            return ErrNotAPlayer
        }
        if !gs.Game.Running {
            return ErrGameOver
        }
        // Validate turn
        switch gs.Game.Mode {
        case ModePvP:
            if seat != gs.Game.Turn {
                return ErrNotYourTurn
            }
        case ModeAI:
            if gs.Game.EngineTurn() {
                return ErrNotYourTurn
            }
        }
        if err := gs.Game.Play(r, c); err != nil {
            return err
        }
        return s.engineReply(gs)
    })
}

// SetLevel switches the engine between random and minimax play.
func (s *Service) SetLevel(ctx context.Context, id string, l ai.Level) (*GameState, error) {
    return s.update(ctx, id, func(gs *GameState) error {
        return gs.Game.SetLevel(l)
    })
}

// SetEnginePlayer puts the engine on side p; it moves at once if p is to move.
func (s *Service) SetEnginePlayer(ctx context.Context, id string, p domain.Cell) (*GameState, error) {
    return s.update(ctx, id, func(gs *GameState) error {
        if err := gs.Game.SetEnginePlayer(p); err != nil {
            return err
        }
        return s.engineReply(gs)
    })
}

// ToggleMode switches between playing the engine and two humans.
func (s *Service) ToggleMode(ctx context.Context, id string) (*GameState, error) {
    return s.update(ctx, id, func(gs *GameState) error {
        gs.Game.ToggleMode()
        return s.engineReply(gs)
    })
}

// Reset starts a fresh board in the same game, keeping seats and settings.
func (s *Service) Reset(ctx context.Context, id string) (*GameState, error) {
    return s.update(ctx, id, func(gs *GameState) error {
        gs.Game.Reset()
        gs.Started = time.Now()
        gs.recorded = false
        return s.engineReply(gs)
    })
}

// Outcomes reports finished games per mode and winner from the store.
func (s *Service) Outcomes(ctx context.Context) ([]storage.OutcomeRow, error) {
    if s.store == nil {
        return nil, nil
    }
    return s.store.Outcomes(ctx)
}

// update applies fn under the lock, then broadcasts the new state and
// records the game if fn finished it.
func (s *Service) update(ctx context.Context, id string, fn func(gs *GameState) error) (*GameState, error) {
    var toDrop []*subscriber

    s.mu.Lock()
    gs, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    if err := fn(gs); err != nil {
        s.mu.Unlock()
        return nil, err
    }
    gs.Updated = time.Now()
    var finished *storage.CompletedGame
    if gs.Game.Over() && !gs.recorded {
        gs.recorded = true
        cg := completedGame(gs)
        finished = &cg
    }

    // Snapshot state and subscribers
    cp := *gs
    subs := s.copySubsLocked(id)
    payload := s.render(cp)
    s.mu.Unlock()

    // Fan-out; drop slow subscribers by closing and marking for deletion
    for sub := range subs {
        if !sub.send(payload) {
            sub.close()
            toDrop = append(toDrop, sub)
        }
    }
    if len(toDrop) > 0 {
        s.mu.Lock()
        for _, sub := range toDrop {
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
        }
        s.mu.Unlock()
    }
    if finished != nil {
        s.finish(ctx, *finished)
    }
    return &cp, nil
}

func completedGame(gs *GameState) storage.CompletedGame {
    cg := storage.CompletedGame{
        ID:        gs.ID,
        Status:    "tie",
        Mode:      gs.Game.Mode.String(),
        Level:     gs.Game.Level.String(),
        Board:     gs.Game.Board.String(),
        StartedAt: gs.Started,
        EndedAt:   gs.Updated,
    }
    if gs.Game.Winner != domain.Empty {
        cg.Winner = gs.Game.Winner.String()
        cg.Status = "win"
    }
    // a reset game keeps its id; suffix the start time so rounds stay distinct
    if !gs.Started.Equal(gs.Created) {
        cg.ID = gs.ID + "-" + gs.Started.UTC().Format("20060102T150405.000000000")
    }
    return cg
}

func (s *Service) finish(ctx context.Context, cg storage.CompletedGame) {
    ctx, cancel := sinkContext(ctx)
    defer cancel()
    s.log.Info().
        Str("game", cg.ID).
        Str("status", cg.Status).
        Str("winner", cg.Winner).
        Str("board", cg.Board).
        Msg("game over")
    if s.store != nil {
        if err := s.store.SaveGame(ctx, cg); err != nil {
            s.log.Error().Err(err).Str("game", cg.ID).Msg("record game")
        }
    }
    if s.publisher != nil {
        s.publisher.Publish(ctx, "game_finished", cg.ID, map[string]any{
            "winner": cg.Winner,
            "status": cg.Status,
            "mode":   cg.Mode,
            "level":  cg.Level,
            "board":  cg.Board,
        })
    }
}

// Subscribe registers a subscriber for an existing game. Returns a channel and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.games[id]; !ok {
        return nil, nil, ErrNotFound
    }
    set := s.subs[id]
    if set == nil {
        set = make(map[*subscriber]struct{})
        s.subs[id] = set
    }
    sub := &subscriber{ch: make(chan []byte, 1)}
    set[sub] = struct{}{}

    unsubOnce := &sync.Once{}
    unsub := func() {
        unsubOnce.Do(func() {
            s.mu.Lock()
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
            s.mu.Unlock()
            sub.close()
        })
    }
    go func() {
        <-ctx.Done()
        unsub()
    }()
    return sub.ch, unsub, nil
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
    out := make(map[*subscriber]struct{})
    if set, ok := s.subs[id]; ok {
        for k := range set {
            out[k] = struct{}{}
        }
    }
    return out
}

package storage

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/jackc/pgx/v5"
    "github.com/rs/zerolog/log"
)

// CompletedGame is the record kept for every finished match.
type CompletedGame struct {
    ID        string
    Winner    string // "X", "O" or "" on a tie
    Status    string // "win" or "tie"
    Mode      string
    Level     string
    Board     string
    StartedAt time.Time
    EndedAt   time.Time
}

// OutcomeRow counts finished games per winner and mode.
type OutcomeRow struct {
    Mode   string `json:"mode"`
    Winner string `json:"winner"`
    Games  int    `json:"games"`
}

type Store interface {
    SaveGame(ctx context.Context, game CompletedGame) error
    Outcomes(ctx context.Context) ([]OutcomeRow, error)
}

// PostgresStore keeps completed games in Postgres. A pgx.Conn is not safe
// for concurrent use, so calls are serialised.
type PostgresStore struct {
    mu   sync.Mutex
    conn *pgx.Conn
}

func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
    conn, err := pgx.Connect(ctx, url)
    if err != nil {
        return nil, err
    }
    return &PostgresStore{conn: conn}, nil
}

func (p *PostgresStore) Close(ctx context.Context) {
    if p == nil || p.conn == nil {
        return
    }
    p.mu.Lock()
    defer p.mu.Unlock()
    _ = p.conn.Close(ctx)
}

func (p *PostgresStore) EnsureTables(ctx context.Context) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    _, err := p.conn.Exec(ctx, `
CREATE TABLE IF NOT EXISTS games (
    id TEXT PRIMARY KEY,
    winner TEXT,
    status TEXT,
    mode TEXT,
    level TEXT,
    board TEXT,
    started_at TIMESTAMP,
    ended_at TIMESTAMP
);
`)
    return err
}

func (p *PostgresStore) SaveGame(ctx context.Context, game CompletedGame) error {
    if p == nil || p.conn == nil {
        return nil
    }
    p.mu.Lock()
    defer p.mu.Unlock()
    _, err := p.conn.Exec(ctx, `INSERT INTO games (id, winner, status, mode, level, board, started_at, ended_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) ON CONFLICT (id) DO NOTHING`,
        game.ID, game.Winner, game.Status, game.Mode, game.Level, game.Board, game.StartedAt, game.EndedAt)
    if err != nil {
        log.Error().Err(err).Str("game", game.ID).Msg("failed to save game")
    }
    return err
}

func (p *PostgresStore) Outcomes(ctx context.Context) ([]OutcomeRow, error) {
    if p == nil || p.conn == nil {
        return nil, nil
    }
    p.mu.Lock()
    defer p.mu.Unlock()
    rows, err := p.conn.Query(ctx, `
SELECT mode, COALESCE(winner, ''), COUNT(*) AS games
FROM games
GROUP BY mode, winner
ORDER BY games DESC`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var res []OutcomeRow
    for rows.Next() {
        var row OutcomeRow
        if err := rows.Scan(&row.Mode, &row.Winner, &row.Games); err != nil {
            return nil, err
        }
        res = append(res, row)
    }
    return res, rows.Err()
}

// MemoryStore keeps completed games in process. Used when no database is
// configured and in tests.
type MemoryStore struct {
    mu    sync.Mutex
    games map[string]CompletedGame
    order []string
}

func NewMemoryStore() *MemoryStore {
    return &MemoryStore{games: make(map[string]CompletedGame)}
}

func (m *MemoryStore) SaveGame(_ context.Context, game CompletedGame) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if _, ok := m.games[game.ID]; ok {
        return nil
    }
    m.games[game.ID] = game
    m.order = append(m.order, game.ID)
    return nil
}

// Games returns the saved games in insertion order.
func (m *MemoryStore) Games() []CompletedGame {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := make([]CompletedGame, 0, len(m.order))
    for _, id := range m.order {
        out = append(out, m.games[id])
    }
    return out
}

func (m *MemoryStore) Outcomes(_ context.Context) ([]OutcomeRow, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    type key struct{ mode, winner string }
    counts := make(map[key]int)
    var keys []key
    for _, id := range m.order {
        g := m.games[id]
        k := key{g.Mode, g.Winner}
        if counts[k] == 0 {
            keys = append(keys, k)
        }
        counts[k]++
    }
    res := make([]OutcomeRow, 0, len(keys))
    for _, k := range keys {
        res = append(res, OutcomeRow{Mode: k.mode, Winner: k.winner, Games: counts[k]})
    }
    sort.SliceStable(res, func(i, j int) bool { return res[i].Games > res[j].Games })
    return res, nil
}

package config

import (
    "testing"
    "time"

    "github.com/jaminalder/tictactoe-ai/internal/ai"
    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "github.com/rs/zerolog"
    "github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
    return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
    cfg, err := LoadFrom(envMap(nil))
    require.NoError(t, err)
    require.Equal(t, ":8080", cfg.Addr)
    require.Equal(t, ai.Minimax, cfg.Level)
    require.Equal(t, domain.O, cfg.Player)
    require.False(t, cfg.Parallel)
    require.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
    require.Equal(t, 15*time.Second, cfg.Heartbeat)
    require.Equal(t, "game-events", cfg.KafkaTopic)
    require.Empty(t, cfg.KafkaBrokers)
    require.Len(t, cfg.EngineOptions(), 3)
}

func TestOverrides(t *testing.T) {
    cfg, err := LoadFrom(envMap(map[string]string{
        "ADDR":          ":9000",
        "PORT":          "7000",
        "AI_LEVEL":      "random",
        "AI_PLAYER":     "x",
        "AI_PARALLEL":   "true",
        "LOG_LEVEL":     "DEBUG",
        "HEARTBEAT":     "5",
        "POSTGRES_URL":  "postgres://localhost/ttt",
        "KAFKA_BROKERS": "a:9092, b:9092,",
    }))
    require.NoError(t, err)
    require.Equal(t, ":7000", cfg.Addr, "PORT wins over ADDR")
    require.Equal(t, ai.Random, cfg.Level)
    require.Equal(t, domain.X, cfg.Player)
    require.True(t, cfg.Parallel)
    require.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
    require.Equal(t, 5*time.Second, cfg.Heartbeat)
    require.Equal(t, "postgres://localhost/ttt", cfg.PostgresURL)
    require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)

    e := ai.New(cfg.EngineOptions()...)
    require.Equal(t, ai.Random, e.Level())
    require.Equal(t, domain.X, e.Player())
}

func TestInvalidValues(t *testing.T) {
    for key, val := range map[string]string{
        "AI_LEVEL":    "expert",
        "AI_PLAYER":   "z",
        "AI_PARALLEL": "sometimes",
        "LOG_LEVEL":   "loud",
        "HEARTBEAT":   "-1",
    } {
        _, err := LoadFrom(envMap(map[string]string{key: val}))
        require.Error(t, err, key)
        require.Contains(t, err.Error(), key)
    }
}

package config

import (
    "fmt"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/jaminalder/tictactoe-ai/internal/ai"
    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "github.com/rs/zerolog"
)

// Config is read from the environment; CLI flags override it per command.
type Config struct {
    Addr         string
    Level        ai.Level
    Player       domain.Cell
    Parallel     bool
    LogLevel     zerolog.Level
    Heartbeat    time.Duration
    PostgresURL  string
    KafkaBrokers []string
    KafkaTopic   string
}

// Load reads the process environment.
func Load() (Config, error) { return LoadFrom(os.Getenv) }

// LoadFrom reads configuration through getenv.
func LoadFrom(getenv func(string) string) (Config, error) {
    env := func(key, fallback string) string {
        if v := getenv(key); v != "" {
            return v
        }
        return fallback
    }

    cfg := Config{
        Addr:        env("ADDR", ":8080"),
        PostgresURL: getenv("POSTGRES_URL"),
        KafkaTopic:  env("KAFKA_TOPIC", "game-events"),
        Heartbeat:   15 * time.Second,
    }
    // PORT first (used by Render, Fly.io, Heroku, etc.)
    if port := getenv("PORT"); port != "" {
        cfg.Addr = ":" + port
    }

    var err error
    if cfg.Level, err = ai.ParseLevel(env("AI_LEVEL", "minimax")); err != nil {
        return Config{}, fmt.Errorf("AI_LEVEL: %w", err)
    }
    if cfg.Player, err = domain.ParseCell(env("AI_PLAYER", "O")); err != nil {
        return Config{}, fmt.Errorf("AI_PLAYER: %w", err)
    }
    if v := getenv("AI_PARALLEL"); v != "" {
        if cfg.Parallel, err = strconv.ParseBool(v); err != nil {
            return Config{}, fmt.Errorf("AI_PARALLEL: %w", err)
        }
    }
    if cfg.LogLevel, err = zerolog.ParseLevel(strings.ToLower(env("LOG_LEVEL", "info"))); err != nil {
        return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
    }
    if v := getenv("HEARTBEAT"); v != "" {
        secs, err := strconv.Atoi(v)
        if err != nil || secs <= 0 {
            return Config{}, fmt.Errorf("HEARTBEAT: invalid seconds %q", v)
        }
        cfg.Heartbeat = time.Duration(secs) * time.Second
    }
    if brokers := getenv("KAFKA_BROKERS"); brokers != "" {
        for _, b := range strings.Split(brokers, ",") {
            if b = strings.TrimSpace(b); b != "" {
                cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
            }
        }
    }
    return cfg, nil
}

// EngineOptions turns the engine settings into ai options.
func (c Config) EngineOptions() []ai.Option {
    return []ai.Option{
        ai.WithLevel(c.Level),
        ai.WithPlayer(c.Player),
        ai.WithParallel(c.Parallel),
    }
}

package analytics

import (
    "context"
    "encoding/json"
    "time"

    "github.com/rs/zerolog/log"
    "github.com/segmentio/kafka-go"
)

// Producer publishes game events to Kafka. A nil Producer drops events.
type Producer struct {
    writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
    if len(brokers) == 0 || topic == "" {
        return nil
    }
    writer := &kafka.Writer{
        Addr:                   kafka.TCP(brokers...),
        Topic:                  topic,
        Balancer:               &kafka.Hash{},
        AllowAutoTopicCreation: true,
        BatchTimeout:           10 * time.Millisecond,
    }
    return &Producer{writer: writer}
}

// Event is the JSON envelope written to the topic.
type Event struct {
    Event     string         `json:"event"`
    Game      string         `json:"game"`
    Payload   map[string]any `json:"payload"`
    Timestamp time.Time      `json:"timestamp"`
}

func encode(event, game string, payload map[string]any, now time.Time) ([]byte, error) {
    return json.Marshal(Event{Event: event, Game: game, Payload: payload, Timestamp: now.UTC()})
}

// Publish writes one event keyed by game id, so a game's events stay ordered
// within a partition.
func (p *Producer) Publish(ctx context.Context, event, game string, payload map[string]any) {
    if p == nil || p.writer == nil {
        return
    }
    data, err := encode(event, game, payload, time.Now())
    if err != nil {
        log.Error().Err(err).Str("event", event).Msg("encode analytics event")
        return
    }
    if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(game), Value: data}); err != nil {
        log.Warn().Err(err).Str("event", event).Msg("kafka publish failed")
    }
}

func (p *Producer) Close() {
    if p == nil || p.writer == nil {
        return
    }
    _ = p.writer.Close()
}

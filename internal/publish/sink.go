// internal/publish/sink.go
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/finch-bridge/internal/finch"
	"github.com/tamzrod/finch-bridge/internal/status"
)

// Publisher delivers one message to a broker.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte, retain bool, qos byte) error
	Close() error
}

const publishTimeout = 5 * time.Second

// Sink mirrors samples and link status onto MQTT topics:
//
//	<prefix>/sensors  retained JSON SensorSample
//	<prefix>/status   retained JSON status.Snapshot
type Sink struct {
	pub    Publisher
	prefix string
	qos    byte
}

func NewSink(pub Publisher, prefix string, qos byte) (*Sink, error) {
	if pub == nil {
		return nil, errors.New("publish: publisher required")
	}
	if prefix == "" {
		return nil, errors.New("publish: topic prefix required")
	}
	return &Sink{pub: pub, prefix: prefix, qos: qos}, nil
}

func (s *Sink) SensorsTopic() string { return s.prefix + "/sensors" }
func (s *Sink) StatusTopic() string  { return s.prefix + "/status" }

func (s *Sink) WriteSample(sample finch.SensorSample) error {
	return s.publishJSON(s.SensorsTopic(), sample)
}

func (s *Sink) WriteStatus(snap status.Snapshot) error {
	return s.publishJSON(s.StatusTopic(), snap)
}

func (s *Sink) publishJSON(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("publish: encode %s: %w", topic, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := s.pub.Publish(ctx, topic, payload, true, s.qos); err != nil {
		return fmt.Errorf("publish: %s: %w", topic, err)
	}
	return nil
}

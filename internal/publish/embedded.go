// internal/publish/embedded.go
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
)

// EmbeddedConfig describes the in-process broker.
type EmbeddedConfig struct {
	Listen string

	// When Username is set, only that user may connect and only the
	// local process may publish. Otherwise everyone may connect
	// read-only.
	Username string
	Password string
}

// Embedded runs a broker in-process and publishes through its inline
// client, so subscribers connect straight to the bridge.
type Embedded struct {
	server *mochi.Server
}

// StartEmbedded starts listening on cfg.Listen.
func StartEmbedded(cfg EmbeddedConfig, log *slog.Logger) (*Embedded, error) {
	if cfg.Listen == "" {
		return nil, errors.New("publish: embedded broker listen address required")
	}
	if log == nil {
		log = slog.Default()
	}

	server := mochi.New(&mochi.Options{
		InlineClient: true,
		Logger:       log.With("component", "mqtt"),
	})

	authRules := auth.AuthRules{{Allow: true}}
	if cfg.Username != "" {
		authRules = auth.AuthRules{
			{Username: auth.RString(cfg.Username), Password: auth.RString(cfg.Password), Allow: true},
		}
	}

	options := auth.Options{
		Ledger: &auth.Ledger{
			Auth: authRules,
			ACL: auth.ACLRules{
				// Nobody but the inline client publishes.
				{Filters: auth.Filters{"#": auth.ReadOnly}},
			},
		},
	}
	if err := server.AddHook(new(auth.Hook), &options); err != nil {
		return nil, fmt.Errorf("publish: auth hook: %w", err)
	}

	tcp := listeners.NewTCP(listeners.Config{ID: "finch", Address: cfg.Listen})
	if err := server.AddListener(tcp); err != nil {
		return nil, fmt.Errorf("publish: listener: %w", err)
	}

	go func() {
		if err := server.Serve(); err != nil {
			log.Error("embedded mqtt broker stopped", "error", err)
		}
	}()

	return &Embedded{server: server}, nil
}

func (e *Embedded) Publish(_ context.Context, topic string, payload []byte, retain bool, qos byte) error {
	return e.server.Publish(topic, payload, retain, qos)
}

func (e *Embedded) Close() error {
	return e.server.Close()
}

// internal/publish/remote.go
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
)

// RemoteConfig describes an external broker.
type RemoteConfig struct {
	URL      string
	ClientID string
	Username string
	Password string
}

// Remote publishes through an external broker. The connection manager
// reconnects on its own until Close.
type Remote struct {
	cm     *autopaho.ConnectionManager
	cancel context.CancelFunc
}

// DialRemote starts the connection manager and waits for the first
// connection (or ctx).
func DialRemote(ctx context.Context, cfg RemoteConfig, log *slog.Logger) (*Remote, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("publish: broker url: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	cliCfg := autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{u},
		KeepAlive:                     20,
		CleanStartOnInitialConnection: true,
		SessionExpiryInterval:         60,
		ConnectUsername:               cfg.Username,
		ConnectPassword:               []byte(cfg.Password),
		OnConnectionUp: func(*autopaho.ConnectionManager, *paho.Connack) {
			log.Info("mqtt connection up", "broker", u.Host)
		},
		OnConnectError: func(err error) {
			log.Warn("mqtt connect failed", "broker", u.Host, "error", err)
		},
		ClientConfig: paho.ClientConfig{
			ClientID:      cfg.ClientID,
			OnClientError: func(err error) { log.Warn("mqtt client error", "error", err) },
			OnServerDisconnect: func(d *paho.Disconnect) {
				if d.Properties != nil {
					log.Warn("mqtt server requested disconnect", "reason", d.Properties.ReasonString)
				} else {
					log.Warn("mqtt server requested disconnect", "reason_code", d.ReasonCode)
				}
			},
		},
	}

	// Runs until cancel, not until ctx.
	runCtx, cancel := context.WithCancel(context.Background())
	cm, err := autopaho.NewConnection(runCtx, cliCfg)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("publish: %w", err)
	}
	if err := cm.AwaitConnection(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("publish: await connection: %w", err)
	}

	return &Remote{cm: cm, cancel: cancel}, nil
}

func (r *Remote) Publish(ctx context.Context, topic string, payload []byte, retain bool, qos byte) error {
	_, err := r.cm.Publish(ctx, &paho.Publish{
		QoS:     qos,
		Topic:   topic,
		Payload: payload,
		Retain:  retain,
	})
	return err
}

func (r *Remote) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err := r.cm.Disconnect(ctx)
	r.cancel()
	<-r.cm.Done()

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("publish: disconnect: %w", err)
	}
	return nil
}

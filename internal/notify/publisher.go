// Package notify publishes build summaries to NATS so other services can
// react to freshly built documentation.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/awesometheme/internal/build"
	"git.home.luguber.info/inful/awesometheme/internal/config"
	ferrors "git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
	"git.home.luguber.info/inful/awesometheme/internal/logfields"
	"git.home.luguber.info/inful/awesometheme/internal/retry"
)

const publishTimeout = 5 * time.Second

// Publisher delivers build events.
type Publisher interface {
	PublishBuild(ctx context.Context, event *BuildEvent) error
	Close() error
}

// NATSPublisher publishes build events on a core NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to the configured NATS server.
func NewNATSPublisher(cfg *config.NotifyConfig) (*NATSPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("notify config is required")
	}
	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("awesomedocs"),
		nats.Timeout(publishTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS publisher initialized", logfields.URL(cfg.NATSURL), slog.String("subject", cfg.Subject))
	return &NATSPublisher{conn: conn, subject: cfg.Subject}, nil
}

// PublishBuild publishes event and waits until the server acknowledged it.
func (p *NATSPublisher) PublishBuild(ctx context.Context, event *BuildEvent) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	slog.DebugContext(ctx, "Published build event", logfields.BuildID(event.BuildID), slog.String("status", event.Status))
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}

// Notifier reports finished builds through a Publisher. Delivery failures
// never fail a build; they are returned as warnings.
type Notifier struct {
	pub     Publisher
	project string
	policy  retry.Policy
}

// NewNotifier returns a Notifier for project that publishes once per build.
func NewNotifier(pub Publisher, project string) *Notifier {
	return &Notifier{pub: pub, project: project, policy: retry.DefaultPolicy()}
}

// WithRetry sets the policy for retrying failed publishes.
func (n *Notifier) WithRetry(p retry.Policy) *Notifier {
	n.policy = p
	return n
}

// Notify publishes the summary of result. A nil Notifier does nothing.
func (n *Notifier) Notify(ctx context.Context, result *build.BuildResult, buildErr error) error {
	if n == nil || n.pub == nil || result == nil {
		return nil
	}
	// The build context may already be canceled; delivery gets its own deadline.
	ctx = context.WithoutCancel(ctx)
	ev := NewBuildEvent(n.project, result, buildErr)
	err := n.policy.Do(ctx, func(ctx context.Context) error {
		return n.pub.PublishBuild(ctx, ev)
	})
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNotify, "failed to publish build event").
			WithContext("build_id", result.BuildID).
			Warning().
			Build()
	}
	return nil
}

// Close closes the underlying publisher.
func (n *Notifier) Close() error {
	if n == nil || n.pub == nil {
		return nil
	}
	return n.pub.Close()
}

// Package feed follows the stream view counter over a websocket and hands
// each update to the monitor.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"reployer/internal/clock"
	"reployer/internal/models"
	"reployer/internal/providers"
	"reployer/internal/structures"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	defaultReconnectDelay = 5 * time.Second
	handshakeTimeout      = 10 * time.Second
)

var ErrInvalidFeedURL = errors.New("feed url must use ws or wss")

type viewMessage struct {
	Count *int `json:"count"`
}

type ViewFeed struct {
	conf    *structures.Config
	logger  providers.Logger
	clock   clock.Clock
	dialer  *websocket.Dialer
	updates chan models.ViewUpdate
}

func NewViewFeed(conf *structures.Config, logger providers.Logger, clk clock.Clock) *ViewFeed {
	return &ViewFeed{
		conf:    conf,
		logger:  logger,
		clock:   clk,
		dialer:  &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		updates: make(chan models.ViewUpdate, 8),
	}
}

// Updates is closed when Run returns.
func (f *ViewFeed) Updates() <-chan models.ViewUpdate {
	return f.updates
}

func (f *ViewFeed) Enabled() bool {
	return f.conf.Feed.URL != ""
}

// Run reads the feed until ctx is done, reconnecting after a fixed delay.
func (f *ViewFeed) Run(ctx context.Context) error {
	defer close(f.updates)

	if !f.Enabled() {
		return nil
	}
	if err := validateFeedURL(f.conf.Feed.URL); err != nil {
		return err
	}

	delay := f.conf.Feed.ReconnectDelay
	if delay <= 0 {
		delay = defaultReconnectDelay
	}

	for {
		err := f.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		f.logger.Warnf(providers.TypeFeed, "View feed disconnected: %s, retrying in %s", err, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (f *ViewFeed) session(ctx context.Context) error {
	conn, resp, err := f.dialer.DialContext(ctx, f.conf.Feed.URL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	f.logger.Infof(providers.TypeFeed, "Connected to view feed %s", f.conf.Feed.URL)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg viewMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.Count == nil {
			f.logger.Debugf(providers.TypeFeed, "Ignoring feed message %q", message)
			continue
		}

		select {
		case f.updates <- models.ViewUpdate{Count: *msg.Count, At: f.clock.Now()}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func validateFeedURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidFeedURL, err)
	}
	if (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return ErrInvalidFeedURL
	}
	return nil
}

// Package bridge carries the extraction request/response contract between
// the orchestrating side and the page side. It mirrors a decoupled event
// pipeline: the origin element is captured at right-click time and consumed
// by the next extraction request, and delivery to a not-yet-present
// receiver is retried exactly once after injecting it.
package bridge

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/ysakura/discue/internal/logging"
	"github.com/ysakura/discue/pkg/models"
)

// ExtractAction is the only action the channel carries.
const ExtractAction = "extractMessage"

// Sentinel errors of the delivery contract.
var (
	// ErrCancelled marks a user cancellation. It is not a fault: callers
	// discard the invocation silently.
	ErrCancelled = errors.New("User cancelled")

	// ErrNoReceiver means no receiver is present to handle the request,
	// triggering the single inject-and-retry pass.
	ErrNoReceiver = errors.New("no receiver for extraction request")

	// ErrDeliveryFailed is the terminal error after the retry also fails.
	ErrDeliveryFailed = errors.New("could not reach the page; please reload and try again")
)

// IsCancelled reports whether err represents a user cancellation, which is
// silently discardable rather than surfaced.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// Request asks the page side to extract the message under the captured
// origin.
type Request struct {
	Action           string `json:"action"`
	TitlePrefix      string `json:"titlePrefix,omitempty"`
	ParentKeyPresets string `json:"parentKeyPresets,omitempty"`
	Lang             string `json:"lang,omitempty"`
}

// Receiver is the page-side handler of extraction requests.
type Receiver func(Request) (*models.ExtractedMessage, error)

// Coordinator owns the "last right-clicked element" state. The origin is
// captured on the pointer event and consumed (cleared) by the next
// extraction request; it is never read by more than one pending request.
type Coordinator struct {
	mu     sync.Mutex
	origin *html.Node
}

// Capture records the origin node. A later capture overwrites an unconsumed
// earlier one.
func (c *Coordinator) Capture(n *html.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.origin = n
}

// Take consumes the captured origin, clearing it. Returns nil when nothing
// was captured.
func (c *Coordinator) Take() *html.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.origin
	c.origin = nil
	return n
}

// Channel delivers a single in-flight extraction request per invocation.
// When no receiver is present the injector is run once and delivery retried
// after a fixed delay, then the failure is terminal.
type Channel struct {
	receiver   Receiver
	injector   func() (Receiver, error)
	retryDelay time.Duration
}

// NewChannel builds a channel. Either receiver or injector may be nil;
// a nil receiver with a working injector models the page side not yet
// being loaded.
func NewChannel(receiver Receiver, injector func() (Receiver, error), retryDelay time.Duration) *Channel {
	return &Channel{
		receiver:   receiver,
		injector:   injector,
		retryDelay: retryDelay,
	}
}

// Send delivers the request and waits for the response. Cancellation by
// the user comes back as ErrCancelled; delivery failure after the single
// injection retry comes back as ErrDeliveryFailed.
func (ch *Channel) Send(ctx context.Context, req Request) (*models.ExtractedMessage, error) {
	msg, err := ch.deliver(req)
	if !errors.Is(err, ErrNoReceiver) {
		return msg, err
	}

	if ch.injector == nil {
		return nil, ErrDeliveryFailed
	}

	logging.Warn("extraction receiver missing, injecting and retrying once")
	receiver, injErr := ch.injector()
	if injErr != nil {
		logging.Error("injection failed", "error", injErr)
		return nil, ErrDeliveryFailed
	}
	ch.receiver = receiver

	select {
	case <-time.After(ch.retryDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	msg, err = ch.deliver(req)
	if errors.Is(err, ErrNoReceiver) {
		return nil, ErrDeliveryFailed
	}
	return msg, err
}

func (ch *Channel) deliver(req Request) (*models.ExtractedMessage, error) {
	if ch.receiver == nil {
		return nil, ErrNoReceiver
	}
	return ch.receiver(req)
}

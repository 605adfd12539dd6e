// Package reader wraps the PC/SC layer (ebfe/scard) with the minimal
// capability surface the codec's callers need: reader discovery,
// card-presence polling, connection, and ATR retrieval. It deliberately
// carries no retry or reconnect policy.
package reader

import (
	"errors"
	"fmt"
	"time"

	"github.com/ebfe/scard"

	"github.com/RoastVeg/nfc-pcsc/pkg/atr"
	"github.com/RoastVeg/nfc-pcsc/pkg/pcsc"
)

// pollInterval bounds each GetStatusChange call so timeouts are honored.
const pollInterval = time.Second

// ErrTimeout is returned when no presence change occurs within the
// caller's deadline.
var ErrTimeout = errors.New("timed out waiting for card event")

// Session binds a connected card to the classification decoded from its
// ATR.
type Session struct {
	Card *scard.Card
	ATR  []byte
	Info atr.Classification
}

// Tag returns the codec façade for this session.
func (s *Session) Tag() *pcsc.Tag {
	return pcsc.NewTag(s.Card, s.Info)
}

// Close disconnects from the card, leaving it powered.
func (s *Session) Close() error {
	return s.Card.Disconnect(scard.LeaveCard)
}

// Reader tracks a single named PC/SC reader.
type Reader struct {
	ctx   *scard.Context
	name  string
	state []scard.ReaderState
}

// List returns a Reader for every reader the PC/SC service knows about.
func List(ctx *scard.Context) ([]*Reader, error) {
	names, err := ctx.ListReaders()
	if err != nil {
		return nil, fmt.Errorf("listing readers: %w", err)
	}

	readers := make([]*Reader, 0, len(names))
	for _, name := range names {
		readers = append(readers, &Reader{
			ctx:  ctx,
			name: name,
			state: []scard.ReaderState{
				{Reader: name, CurrentState: scard.StateUnaware},
			},
		})
	}
	return readers, nil
}

// Name returns the PC/SC name of the reader.
func (r *Reader) Name() string {
	return r.name
}

// WaitForCard blocks until a card is present, then connects to it in
// shared mode and classifies its ATR. A timeout of 0 or less waits
// forever.
func (r *Reader) WaitForCard(timeout time.Duration) (*Session, error) {
	if err := r.waitForState(timeout, true); err != nil {
		return nil, err
	}

	// Force T=0 or T=1 to avoid "Parameter Incorrect" errors with some
	// drivers.
	card, err := r.ctx.Connect(r.name, scard.ShareShared, scard.ProtocolT0|scard.ProtocolT1)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", r.name, err)
	}

	status, err := card.Status()
	if err != nil {
		if dcErr := card.Disconnect(scard.LeaveCard); dcErr != nil {
			return nil, fmt.Errorf("reading card status: %w (disconnect: %v)", err, dcErr)
		}
		return nil, fmt.Errorf("reading card status: %w", err)
	}

	return &Session{
		Card: card,
		ATR:  status.Atr,
		Info: atr.Parse(status.Atr),
	}, nil
}

// WaitForRemoval blocks until the reader reports no card present.
// A timeout of 0 or less waits forever.
func (r *Reader) WaitForRemoval(timeout time.Duration) error {
	return r.waitForState(timeout, false)
}

// waitForState polls the reader until the presence bit matches want.
func (r *Reader) waitForState(timeout time.Duration, want bool) error {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		if err := r.ctx.GetStatusChange(r.state, pollInterval); err != nil && !errors.Is(err, scard.ErrTimeout) {
			return fmt.Errorf("status change on %s: %w", r.name, err)
		}

		present := r.state[0].EventState&scard.StatePresent != 0
		r.state[0].CurrentState = r.state[0].EventState

		if present == want {
			return nil
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return ErrTimeout
		}
	}
}

package pcsc

import (
	"fmt"

	"github.com/RoastVeg/nfc-pcsc/pkg/atr"
)

// CLIENT & SESSION LOGIC:
// The Client is a thin façade over a physical card connection: it encodes
// a command, hands the bytes to the transport, and decodes the reply. It
// never retries on its own, with one protocol-level exception handled in
// Send(): a 6C XX answer means the card wants the exact same read re-issued
// with Le = XX, and the client does that automatically, recording every
// physical exchange in the returned Trace.
//
// Transport failures surface unchanged (wrapped, never reinterpreted);
// codec failures indicate malformed frames, not transient conditions.

// Transmitter abstracts the physical card connection.
type Transmitter interface {
	Transmit(cmd []byte) ([]byte, error)
}

// Client manages command exchange with a storage card.
type Client struct {
	Card Transmitter
}

// NewClient creates a new Client instance.
func NewClient(card Transmitter) *Client {
	return &Client{Card: card}
}

// Run performs a single encode-transmit-decode exchange with no protocol
// handling on top.
func (c *Client) Run(cmd *Command) (*Response, error) {
	rawCmd, err := cmd.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}

	rawResp, err := c.Card.Transmit(rawCmd)
	if err != nil {
		return nil, fmt.Errorf("transmission error: %w", err)
	}

	return ParseResponse(rawResp)
}

// Send transmits a command and handles the 6CXX wrong-Le convention for
// the read-style instructions, re-issuing the command with the length the
// card asked for. The returned Trace holds every physical exchange.
func (c *Client) Send(cmd *Command) (Trace, error) {
	resp, err := c.Run(cmd)
	if err != nil {
		return nil, err
	}

	trace := Trace{{Command: cmd, Response: resp}}

	wrongLe, ok := resp.Status.(WrongLengthLe)
	if !ok {
		return trace, nil
	}

	// Only the read-style instructions carry an Le to correct.
	newCmd := *cmd
	switch cmd.Ins.(type) {
	case GetData:
		newCmd.Ins = GetData{Le: wrongLe.SW2}
	case ReadBinary:
		newCmd.Ins = ReadBinary{Le: wrongLe.SW2}
	default:
		return trace, nil
	}

	subTrace, err := c.Send(&newCmd)
	if err != nil {
		return trace, err
	}

	return append(trace, subTrace...), nil
}

// Tag is a session with a contactless tag: a connected transport plus the
// classification decoded from its ATR.
type Tag struct {
	*Client
	Info atr.Classification
}

// NewTag creates a session for a connected card.
func NewTag(card Transmitter, info atr.Classification) *Tag {
	return &Tag{Client: NewClient(card), Info: info}
}

// UID fetches the card identification data (GET DATA with Le 0).
func (t *Tag) UID() ([]byte, error) {
	resp, err := t.Run(NewCommand(GetData{Le: 0}, 0x00, 0x00))
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, statusError("get data", resp.Status, InsGetData)
	}
	return resp.Data, nil
}

// LoadKey stores an authentication key into the reader key slot.
func (t *Tag) LoadKey(slot byte, key []byte) error {
	resp, err := t.Run(NewCommand(LoadKeys{Data: key}, 0x00, slot))
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return statusError("load keys", resp.Status, InsLoadKeys)
	}
	return nil
}

// Authenticate authenticates the block at the given address with a
// previously loaded key.
func (t *Tag) Authenticate(address uint16, keyType KeyType, slot byte) error {
	ins := GeneralAuthenticate{Address: address, KeyType: keyType, KeyID: slot}
	resp, err := t.Run(NewCommand(ins, 0x00, 0x00))
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return statusError("authenticate", resp.Status, InsGeneralAuthenticate)
	}
	return nil
}

// ReadBlock reads le bytes starting at the given block address.
// An le of 0 requests the protocol maximum.
func (t *Tag) ReadBlock(address uint16, le byte) ([]byte, error) {
	cmd := NewCommand(ReadBinary{Le: le}, byte(address>>8), byte(address))
	trace, err := t.Send(cmd)
	if err != nil {
		return nil, err
	}
	last := trace.Last()
	if !last.IsSuccess() {
		return nil, statusError("read binary", last.Response.Status, InsReadBinary)
	}
	return last.Response.Data, nil
}

// UpdateBlock writes data starting at the given block address.
func (t *Tag) UpdateBlock(address uint16, data []byte) error {
	cmd := NewCommand(UpdateBinary{Data: data}, byte(address>>8), byte(address))
	resp, err := t.Run(cmd)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return statusError("update binary", resp.Status, InsUpdateBinary)
	}
	return nil
}

// statusError turns a non-success status into an error, enriched with the
// PC/SC diagnostic when the tables define one.
func statusError(op string, st Status, ins InsCode) error {
	if diag, ok := Diagnose(st, ins); ok {
		return fmt.Errorf("%s failed: %s (%s)", op, st, diag)
	}
	return fmt.Errorf("%s failed: %s", op, st)
}

package pcsc

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/RoastVeg/nfc-pcsc/pkg/atr"
	"github.com/RoastVeg/nfc-pcsc/pkg/hexutil"
)

// exchange is one scripted request/reply pair.
type exchange struct {
	expect  []byte
	respond []byte
}

// scriptedCard is a Transmitter that verifies each command frame against a
// script and answers with canned response bytes.
type scriptedCard struct {
	t     *testing.T
	calls int
	tape  []exchange
}

func (c *scriptedCard) Transmit(cmd []byte) ([]byte, error) {
	c.t.Helper()
	if c.calls >= len(c.tape) {
		c.t.Fatalf("unexpected transmit #%d: %X", c.calls+1, cmd)
	}
	step := c.tape[c.calls]
	c.calls++
	if !bytes.Equal(cmd, step.expect) {
		c.t.Fatalf("transmit #%d\nExpected: %X\nGot:      %X", c.calls, step.expect, cmd)
	}
	return step.respond, nil
}

// brokenCard is a Transmitter whose link always fails.
type brokenCard struct{ err error }

func (c *brokenCard) Transmit([]byte) ([]byte, error) { return nil, c.err }

func TestClient_Run(t *testing.T) {
	card := &scriptedCard{t: t, tape: []exchange{
		{expect: hexutil.Hex("FF CA 00 00 00"), respond: hexutil.Hex("04 A1 B2 C3 90 00")},
	}}

	resp, err := NewClient(card).Run(NewCommand(GetData{Le: 0}, 0x00, 0x00))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got %s", resp.Status)
	}
	if diff := cmp.Diff(hexutil.Hex("04 A1 B2 C3"), resp.Data); diff != "" {
		t.Errorf("Data mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_Run_TransportError(t *testing.T) {
	linkErr := errors.New("reader unplugged")
	_, err := NewClient(&brokenCard{err: linkErr}).Run(NewCommand(GetData{Le: 0}, 0, 0))
	if !errors.Is(err, linkErr) {
		t.Errorf("transport error not passed through: %v", err)
	}
}

func TestClient_Run_EncodingError(t *testing.T) {
	cmd := NewCommand(UpdateBinary{Data: make([]byte, 300)}, 0, 0)
	_, err := NewClient(&scriptedCard{t: t}).Run(cmd)
	if !errors.Is(err, ErrTooLong) {
		t.Errorf("expected ErrTooLong, got %v", err)
	}
}

func TestClient_Send_WrongLeRetry(t *testing.T) {
	// The card rejects Le 16 and asks for 4; the client re-issues the read
	// with the corrected Le and the trace keeps both exchanges.
	card := &scriptedCard{t: t, tape: []exchange{
		{expect: hexutil.Hex("FF B0 00 04 10"), respond: hexutil.Hex("6C 04")},
		{expect: hexutil.Hex("FF B0 00 04 04"), respond: hexutil.Hex("DE AD BE EF 90 00")},
	}}

	trace, err := NewClient(card).Send(NewCommand(ReadBinary{Le: 16}, 0x00, 0x04))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(trace) != 2 {
		t.Fatalf("trace has %d transactions, want 2", len(trace))
	}
	if !trace.IsSuccess() {
		t.Errorf("final status should be success, got %s", trace.Last().Response.Status)
	}
	if diff := cmp.Diff(hexutil.Hex("DE AD BE EF"), trace.Last().Response.Data); diff != "" {
		t.Errorf("Data mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_Send_NoRetryForWriteStyle(t *testing.T) {
	// 6CXX after a write-style instruction has no Le to correct; the trace
	// stops at the first exchange.
	card := &scriptedCard{t: t, tape: []exchange{
		{expect: hexutil.Hex("FF 20 00 00 02 AA BB"), respond: hexutil.Hex("6C 04")},
	}}

	trace, err := NewClient(card).Send(NewCommand(Verify{Data: hexutil.Hex("AA BB")}, 0x00, 0x00))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(trace) != 1 {
		t.Errorf("trace has %d transactions, want 1", len(trace))
	}
	if trace.IsSuccess() {
		t.Error("trace should not be a success")
	}
}

func TestTag_Operations(t *testing.T) {
	key := hexutil.Hex("FF FF FF FF FF FF")
	card := &scriptedCard{t: t, tape: []exchange{
		{expect: hexutil.Hex("FF CA 00 00 00"), respond: hexutil.Hex("04 A1 B2 C3 90 00")},
		{expect: append(hexutil.Hex("FF 82 00 00 06"), key...), respond: hexutil.Hex("90 00")},
		{expect: hexutil.Hex("FF 86 00 00 05 01 00 04 60 00"), respond: hexutil.Hex("90 00")},
		{expect: hexutil.Hex("FF B0 00 04 10"), respond: append(make([]byte, 16), 0x90, 0x00)},
		{expect: append(hexutil.Hex("FF D6 00 04 10"), make([]byte, 16)...), respond: hexutil.Hex("90 00")},
	}}

	tag := NewTag(card, atr.Classification{})

	uid, err := tag.UID()
	if err != nil {
		t.Fatalf("UID failed: %v", err)
	}
	if diff := cmp.Diff(hexutil.Hex("04 A1 B2 C3"), uid); diff != "" {
		t.Errorf("UID mismatch (-want +got):\n%s", diff)
	}

	if err := tag.LoadKey(0x00, key); err != nil {
		t.Fatalf("LoadKey failed: %v", err)
	}
	if err := tag.Authenticate(0x0004, KeyTypeA, 0x00); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	block, err := tag.ReadBlock(0x0004, 16)
	if err != nil {
		t.Fatalf("ReadBlock failed: %v", err)
	}
	if len(block) != 16 {
		t.Errorf("ReadBlock returned %d bytes, want 16", len(block))
	}

	if err := tag.UpdateBlock(0x0004, make([]byte, 16)); err != nil {
		t.Fatalf("UpdateBlock failed: %v", err)
	}

	if card.calls != len(card.tape) {
		t.Errorf("transmitted %d frames, want %d", card.calls, len(card.tape))
	}
}

func TestTag_StatusErrorCarriesDiagnostic(t *testing.T) {
	card := &scriptedCard{t: t, tape: []exchange{
		{expect: hexutil.Hex("FF 86 00 00 05 01 00 04 60 00"), respond: hexutil.Hex("69 82")},
	}}

	err := NewTag(card, atr.Classification{}).Authenticate(0x0004, KeyTypeA, 0x00)
	if err == nil {
		t.Fatal("expected an error for 6982")
	}
	if !strings.Contains(err.Error(), "security status not satisfied") {
		t.Errorf("error does not carry the diagnostic: %v", err)
	}
}

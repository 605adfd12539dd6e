package pcsc

import "fmt"

// Response Frame and Status Word decoding.
//
// A storage card response is at most 255 payload bytes followed by a
// mandatory two-byte status word. The SW1 byte selects one of a fixed set
// of ISO 7816-4 families; some families qualify the condition further with
// SW2, the rest are fully described by SW1 alone. Decoding and re-encoding
// a status word is lossless, except that the families without sub-codes
// normalize SW2 to 0x00 when re-encoded.

// Response frame limits.
const (
	// ResponseMinLength is the bare status word.
	ResponseMinLength = 2

	// ResponseMaxLength bounds a response with a full 255-byte payload.
	ResponseMaxLength = 2 + 255
)

// Status is the tagged union of status word families. Variants whose
// family qualifies the condition via SW2 carry that byte; the rest carry
// nothing.
type Status interface {
	// StatusBytes returns the wire form (SW1, SW2) of the status.
	// Families without a sub-code return a canonical SW2 of 0x00.
	StatusBytes() (sw1, sw2 byte)

	isStatus()
}

// Warning (SW1 0x62): state of non-volatile memory unchanged.
type Warning struct {
	SW2 byte
}

// AllowedRetries (SW1 0x63): state changed, SW2 may carry a retry counter.
type AllowedRetries struct {
	SW2 byte
}

// MemoryFailure (SW1 0x65): a memory operation failed.
type MemoryFailure struct {
	SW2 byte
}

// WrongLength (SW1 0x67): the frame length field was wrong.
type WrongLength struct{}

// WrongClassByte (SW1 0x68): the card rejected the class byte.
type WrongClassByte struct{}

// CommandImpossible (SW1 0x69): command not allowed in the current state.
// The SW2 meaning depends on the originating instruction.
type CommandImpossible struct {
	SW2 byte
}

// CommandError (SW1 0x6A): wrong parameters P1-P2.
type CommandError struct {
	SW2 byte
}

// WrongParameter (SW1 0x6B): parameter bytes invalid.
type WrongParameter struct{}

// WrongLengthLe (SW1 0x6C): wrong Le field, SW2 carries the exact length.
type WrongLengthLe struct {
	SW2 byte
}

// Success (SW1 0x90): command processed, no further qualification.
type Success struct{}

// Unknown covers every SW1 outside the defined families, preserving both
// bytes so nothing is lost on re-encode.
type Unknown struct {
	SW1, SW2 byte
}

func (s Warning) StatusBytes() (byte, byte)           { return 0x62, s.SW2 }
func (s AllowedRetries) StatusBytes() (byte, byte)    { return 0x63, s.SW2 }
func (s MemoryFailure) StatusBytes() (byte, byte)     { return 0x65, s.SW2 }
func (WrongLength) StatusBytes() (byte, byte)         { return 0x67, 0x00 }
func (WrongClassByte) StatusBytes() (byte, byte)      { return 0x68, 0x00 }
func (s CommandImpossible) StatusBytes() (byte, byte) { return 0x69, s.SW2 }
func (s CommandError) StatusBytes() (byte, byte)      { return 0x6A, s.SW2 }
func (WrongParameter) StatusBytes() (byte, byte)      { return 0x6B, 0x00 }
func (s WrongLengthLe) StatusBytes() (byte, byte)     { return 0x6C, s.SW2 }
func (Success) StatusBytes() (byte, byte)             { return 0x90, 0x00 }
func (s Unknown) StatusBytes() (byte, byte)           { return s.SW1, s.SW2 }

func (Warning) isStatus()           {}
func (AllowedRetries) isStatus()    {}
func (MemoryFailure) isStatus()     {}
func (WrongLength) isStatus()       {}
func (WrongClassByte) isStatus()    {}
func (CommandImpossible) isStatus() {}
func (CommandError) isStatus()      {}
func (WrongParameter) isStatus()    {}
func (WrongLengthLe) isStatus()     {}
func (Success) isStatus()           {}
func (Unknown) isStatus()           {}

func (s Warning) String() string {
	return fmt.Sprintf("[62%02X] Warning: NV memory unchanged", s.SW2)
}

func (s AllowedRetries) String() string {
	return fmt.Sprintf("[63%02X] Warning: state changed, retries allowed", s.SW2)
}

func (s MemoryFailure) String() string {
	return fmt.Sprintf("[65%02X] Error: memory failure", s.SW2)
}

func (WrongLength) String() string {
	return "[6700] Error: wrong length"
}

func (WrongClassByte) String() string {
	return "[6800] Error: class byte not supported"
}

func (s CommandImpossible) String() string {
	return fmt.Sprintf("[69%02X] Error: command not allowed", s.SW2)
}

func (s CommandError) String() string {
	return fmt.Sprintf("[6A%02X] Error: wrong parameters P1-P2", s.SW2)
}

func (WrongParameter) String() string {
	return "[6B00] Error: wrong parameter"
}

func (s WrongLengthLe) String() string {
	return fmt.Sprintf("[6C%02X] Error: wrong length, correct Le is %d", s.SW2, s.SW2)
}

func (Success) String() string {
	return "[9000] Success"
}

func (s Unknown) String() string {
	return fmt.Sprintf("[%02X%02X] Unknown status", s.SW1, s.SW2)
}

// DecodeStatus maps a raw status word to its tagged family.
// Unlisted SW1 values decode to Unknown rather than failing.
func DecodeStatus(sw1, sw2 byte) Status {
	switch sw1 {
	case 0x62:
		return Warning{SW2: sw2}
	case 0x63:
		return AllowedRetries{SW2: sw2}
	case 0x65:
		return MemoryFailure{SW2: sw2}
	case 0x67:
		return WrongLength{}
	case 0x68:
		return WrongClassByte{}
	case 0x69:
		return CommandImpossible{SW2: sw2}
	case 0x6A:
		return CommandError{SW2: sw2}
	case 0x6B:
		return WrongParameter{}
	case 0x6C:
		return WrongLengthLe{SW2: sw2}
	case 0x90:
		return Success{}
	}
	return Unknown{SW1: sw1, SW2: sw2}
}

// Response represents the reply from the card: an optional payload plus
// the decoded status word.
type Response struct {
	Data   []byte
	Status Status
}

// ParseResponse splits raw bytes received from the card into payload and
// status word. It fails with ErrTooShort below 2 bytes and ErrTooLong
// above 257.
func ParseResponse(raw []byte) (*Response, error) {
	if len(raw) < ResponseMinLength {
		return nil, fmt.Errorf("response of %d bytes: %w", len(raw), ErrTooShort)
	}
	if len(raw) > ResponseMaxLength {
		return nil, fmt.Errorf("response of %d bytes: %w", len(raw), ErrTooLong)
	}

	eod := len(raw) - 2
	return &Response{
		Data:   append([]byte(nil), raw[:eod]...),
		Status: DecodeStatus(raw[eod], raw[eod+1]),
	}, nil
}

// Bytes re-encodes the response into its wire representation.
func (r *Response) Bytes() []byte {
	sw1, sw2 := r.Status.StatusBytes()
	out := make([]byte, 0, len(r.Data)+2)
	out = append(out, r.Data...)
	return append(out, sw1, sw2)
}

// IsSuccess reports whether the card processed the command successfully.
func (r *Response) IsSuccess() bool {
	_, ok := r.Status.(Success)
	return ok
}

// String returns a readable representation of the response.
func (r *Response) String() string {
	return fmt.Sprintf("Data (%d bytes) | Status: %s", len(r.Data), r.Status)
}

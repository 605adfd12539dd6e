package pcsc

import "errors"

// Codec errors. All of them indicate malformed input, never a transient
// condition: the codec does not retry, and transport failures are a
// separate error domain surfaced by the Transmitter implementation.
var (
	// ErrTooShort indicates the input byte count is below the minimum
	// frame size (command header, or the two status bytes of a response).
	ErrTooShort = errors.New("not enough bytes")

	// ErrTooLong indicates the input or payload exceeds what a one-byte
	// length field can carry.
	ErrTooLong = errors.New("byte length exceeded")

	// ErrWrongClass indicates the class byte is not 0xFF, so the input is
	// not a PC/SC storage card command.
	ErrWrongClass = errors.New("not a PC/SC storage card command")

	// ErrUnknownInstruction indicates an instruction code outside the six
	// storage card instructions.
	ErrUnknownInstruction = errors.New("unknown instruction code")

	// ErrBadVersion indicates a General Authenticate frame whose version
	// byte is not 0x01.
	ErrBadVersion = errors.New("unsupported authenticate version")
)

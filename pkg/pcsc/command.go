package pcsc

import (
	"encoding/binary"
	"fmt"
)

// Storage Card Command Encoding according to PC/SC Part 3.
//
// Contactless storage cards have no on-card application, so the host talks
// to them through pseudo-APDUs interpreted by the reader itself. Every
// command shares one template:
//
//	CLA(FF) INS P1 P2 LEN [payload]
//
// - CLA is always 0xFF. That value is reserved (invalid) in ISO 7816-4,
//   which is exactly why PC/SC claims it for reader-handled commands.
// - LEN is Le (expected response length, 0 = protocol maximum) for the
//   read-style instructions, or Lc (payload byte count) for the
//   write-style ones. Both are a single byte, capping payloads at 255.
// - GENERAL AUTHENTICATE carries a fixed 5-byte data object: version (01),
//   block address (2 bytes big endian), key type, key slot.

// InsCode is a typed representation of the instruction byte.
type InsCode byte

// Storage card instruction (INS) codes as defined in PC/SC Part 3.
const (
	InsVerify              InsCode = 0x20
	InsLoadKeys            InsCode = 0x82
	InsGeneralAuthenticate InsCode = 0x86
	InsReadBinary          InsCode = 0xB0
	InsGetData             InsCode = 0xCA
	InsUpdateBinary        InsCode = 0xD6
)

// String returns the PC/SC name of the instruction.
func (i InsCode) String() string {
	switch i {
	case InsVerify:
		return "VERIFY"
	case InsLoadKeys:
		return "LOAD KEYS"
	case InsGeneralAuthenticate:
		return "GENERAL AUTHENTICATE"
	case InsReadBinary:
		return "READ BINARY"
	case InsGetData:
		return "GET DATA"
	case InsUpdateBinary:
		return "UPDATE BINARY"
	}
	return fmt.Sprintf("INS(0x%02X)", byte(i))
}

// KeyType selects which MIFARE key a GENERAL AUTHENTICATE refers to.
// The set is open: values other than KeyTypeA and KeyTypeB travel on the
// wire unchanged, so hardware with vendor key types never causes an error.
type KeyType byte

const (
	KeyTypeA KeyType = 0x60
	KeyTypeB KeyType = 0x61
)

// String returns a readable name for the key type.
func (k KeyType) String() string {
	switch k {
	case KeyTypeA:
		return "Key A"
	case KeyTypeB:
		return "Key B"
	}
	return fmt.Sprintf("KeyType(0x%02X)", byte(k))
}

// Instruction is the tagged union of the six storage card instructions.
// Each variant carries only the fields it needs; the instruction code is
// derived from the variant, never stored.
type Instruction interface {
	// Code returns the instruction byte for this variant.
	Code() InsCode

	isInstruction()
}

// GetData requests card identification data (the UID on most tags).
type GetData struct {
	Le byte // expected response length, 0 = protocol maximum
}

// LoadKeys stores an authentication key into a reader or card key slot.
type LoadKeys struct {
	Data []byte
}

// GeneralAuthenticate authenticates a memory block with a previously
// loaded key.
type GeneralAuthenticate struct {
	Address uint16
	KeyType KeyType
	KeyID   byte
}

// Verify presents verification data (e.g. a PIN) to the card.
type Verify struct {
	Data []byte
}

// ReadBinary reads memory starting at the block addressed by P1/P2.
type ReadBinary struct {
	Le byte // expected response length, 0 = protocol maximum
}

// UpdateBinary writes memory starting at the block addressed by P1/P2.
type UpdateBinary struct {
	Data []byte
}

func (GetData) Code() InsCode             { return InsGetData }
func (LoadKeys) Code() InsCode            { return InsLoadKeys }
func (GeneralAuthenticate) Code() InsCode { return InsGeneralAuthenticate }
func (Verify) Code() InsCode              { return InsVerify }
func (ReadBinary) Code() InsCode          { return InsReadBinary }
func (UpdateBinary) Code() InsCode        { return InsUpdateBinary }

func (GetData) isInstruction()             {}
func (LoadKeys) isInstruction()            {}
func (GeneralAuthenticate) isInstruction() {}
func (Verify) isInstruction()              {}
func (ReadBinary) isInstruction()          {}
func (UpdateBinary) isInstruction()        {}

// Command frame limits and constants.
const (
	// ClassByte is the fixed pseudo-APDU class for storage cards.
	ClassByte = 0xFF

	// CommandMinLength is the smallest valid frame: CLA INS P1 P2 Le/Lc.
	CommandMinLength = 5

	// CommandMaxLength bounds a frame with a full one-byte Lc payload.
	CommandMaxLength = 5 + 255

	// authFrameLength is the fixed size of a GENERAL AUTHENTICATE frame.
	authFrameLength = 10

	// authVersion is the only defined authenticate data object version.
	authVersion = 0x01
)

// Command represents a storage card command: an instruction plus the two
// parameter bytes. The class byte is a codec constant, not data.
type Command struct {
	Ins    Instruction
	P1, P2 byte
}

// NewCommand creates a command from an instruction variant and parameters.
func NewCommand(ins Instruction, p1, p2 byte) *Command {
	return &Command{Ins: ins, P1: p1, P2: p2}
}

// Bytes encodes the command into its wire representation.
// It fails with ErrTooLong when a variable-length payload does not fit the
// one-byte Lc field.
func (c *Command) Bytes() ([]byte, error) {
	switch ins := c.Ins.(type) {
	case GetData:
		return []byte{ClassByte, byte(InsGetData), c.P1, c.P2, ins.Le}, nil
	case ReadBinary:
		return []byte{ClassByte, byte(InsReadBinary), c.P1, c.P2, ins.Le}, nil
	case LoadKeys:
		return c.encodePayload(InsLoadKeys, ins.Data)
	case Verify:
		return c.encodePayload(InsVerify, ins.Data)
	case UpdateBinary:
		return c.encodePayload(InsUpdateBinary, ins.Data)
	case GeneralAuthenticate:
		return []byte{
			ClassByte,
			byte(InsGeneralAuthenticate),
			c.P1,
			c.P2,
			5, // Lc fixed
			authVersion,
			byte(ins.Address >> 8),
			byte(ins.Address),
			byte(ins.KeyType),
			ins.KeyID,
		}, nil
	}
	return nil, fmt.Errorf("instruction %T: %w", c.Ins, ErrUnknownInstruction)
}

// encodePayload builds a write-style frame with a one-byte Lc field.
func (c *Command) encodePayload(code InsCode, data []byte) ([]byte, error) {
	if len(data) > 255 {
		return nil, fmt.Errorf("payload of %d bytes: %w", len(data), ErrTooLong)
	}
	out := make([]byte, 0, CommandMinLength+len(data))
	out = append(out, ClassByte, byte(code), c.P1, c.P2, byte(len(data)))
	return append(out, data...), nil
}

// ExpectedResponseLen returns the transmit buffer size this command needs:
// Le+2 for the read-style instructions (the protocol maximum of 257 when
// Le is 0), and the bare 2-byte status word for everything else.
func (c *Command) ExpectedResponseLen() int {
	switch ins := c.Ins.(type) {
	case GetData:
		return expectedReadLen(ins.Le)
	case ReadBinary:
		return expectedReadLen(ins.Le)
	}
	return ResponseMinLength
}

func expectedReadLen(le byte) int {
	if le == 0 {
		return ResponseMaxLength
	}
	return int(le) + 2
}

// String returns a readable representation of the command meta-data.
func (c *Command) String() string {
	return fmt.Sprintf("%s | P1: %02X, P2: %02X", c.Ins.Code(), c.P1, c.P2)
}

// ParseCommand decodes a wire frame back into a Command.
//
// Beyond the frame envelope (ErrTooShort under 5 bytes, ErrTooLong over
// 260, ErrWrongClass when the class byte is not 0xFF,
// ErrUnknownInstruction for codes outside the six), it validates that the
// declared Lc matches the actual payload for the write-style instructions,
// that read-style frames carry no payload, and that a GENERAL AUTHENTICATE
// frame is exactly 10 bytes with version 0x01.
func ParseCommand(raw []byte) (*Command, error) {
	if len(raw) < CommandMinLength {
		return nil, fmt.Errorf("command frame of %d bytes: %w", len(raw), ErrTooShort)
	}
	if len(raw) > CommandMaxLength {
		return nil, fmt.Errorf("command frame of %d bytes: %w", len(raw), ErrTooLong)
	}
	if raw[0] != ClassByte {
		return nil, fmt.Errorf("class byte 0x%02X: %w", raw[0], ErrWrongClass)
	}

	var ins Instruction
	switch code := InsCode(raw[1]); code {
	case InsGetData, InsReadBinary:
		if len(raw) != CommandMinLength {
			return nil, fmt.Errorf("%s frame of %d bytes: %w", code, len(raw), ErrTooLong)
		}
		if code == InsGetData {
			ins = GetData{Le: raw[4]}
		} else {
			ins = ReadBinary{Le: raw[4]}
		}
	case InsLoadKeys, InsVerify, InsUpdateBinary:
		if err := checkLc(code, raw); err != nil {
			return nil, err
		}
		data := append([]byte(nil), raw[5:]...)
		switch code {
		case InsLoadKeys:
			ins = LoadKeys{Data: data}
		case InsVerify:
			ins = Verify{Data: data}
		default:
			ins = UpdateBinary{Data: data}
		}
	case InsGeneralAuthenticate:
		if len(raw) < authFrameLength {
			return nil, fmt.Errorf("authenticate frame of %d bytes: %w", len(raw), ErrTooShort)
		}
		if len(raw) > authFrameLength {
			return nil, fmt.Errorf("authenticate frame of %d bytes: %w", len(raw), ErrTooLong)
		}
		if err := checkLc(code, raw); err != nil {
			return nil, err
		}
		if raw[5] != authVersion {
			return nil, fmt.Errorf("version byte 0x%02X: %w", raw[5], ErrBadVersion)
		}
		ins = GeneralAuthenticate{
			Address: binary.BigEndian.Uint16(raw[6:8]),
			KeyType: KeyType(raw[8]),
			KeyID:   raw[9],
		}
	default:
		return nil, fmt.Errorf("INS 0x%02X: %w", raw[1], ErrUnknownInstruction)
	}

	return &Command{Ins: ins, P1: raw[2], P2: raw[3]}, nil
}

// checkLc validates that the declared Lc agrees with the remaining bytes.
func checkLc(code InsCode, raw []byte) error {
	declared := int(raw[4])
	actual := len(raw) - CommandMinLength
	switch {
	case actual < declared:
		return fmt.Errorf("%s payload of %d bytes, Lc %d: %w", code, actual, declared, ErrTooShort)
	case actual > declared:
		return fmt.Errorf("%s payload of %d bytes, Lc %d: %w", code, actual, declared, ErrTooLong)
	}
	return nil
}

/*
Package pcsc implements the pseudo-APDU codec for contactless storage cards
according to PC/SC Part 3.

Memory tags (ISO 14443 Part 3, ISO 15693 Part 3) have no on-card
application, so a host cannot address them with regular ISO 7816-4 APDUs.
Instead, PC/SC defines a small set of commands under the reserved class
byte 0xFF that the reader itself interprets: GET DATA, LOAD KEYS, GENERAL
AUTHENTICATE, VERIFY, READ BINARY and UPDATE BINARY. This package encodes
and decodes those frames and the status words the card answers with.

# Fundamentals

The exchange is strictly synchronous and half-duplex:
 1. The host sends a command frame: CLA(FF) INS P1 P2 LEN [payload].
 2. The reader answers with a response frame: [payload] SW1 SW2.

All codec operations are pure transformations over owned byte buffers;
nothing here performs I/O or holds state across calls. The physical
connection is abstracted behind the Transmitter interface, so the codec is
fully testable without a reader.

# Status Words

Every response ends with a 2-byte status word.
  - 0x9000: Success.
  - 0x6CXX: Wrong length, XX is the correct Le.
  - 0x69XX: Command not allowed; the meaning of XX depends on the
    instruction that was sent.
  - Other: various warning and error conditions.

Diagnose resolves a decoded status to its spec-defined meaning where one
exists; absence of a mapping is normal, not an error.

# Usage Example

	tag := pcsc.NewTag(card, atr.Parse(rawATR))

	uid, err := tag.UID()
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Printf("UID: %X\n", uid)

	// Authenticate and read a MIFARE Classic block.
	key := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	if err := tag.LoadKey(0x00, key); err != nil {
	    log.Fatal(err)
	}
	if err := tag.Authenticate(0x0004, pcsc.KeyTypeA, 0x00); err != nil {
	    log.Fatal(err)
	}
	block, err := tag.ReadBlock(0x0004, 16)
*/
package pcsc

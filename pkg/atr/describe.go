package atr

import (
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"

	"github.com/RoastVeg/nfc-pcsc/pkg/bits"
)

// Describe returns a multi-line human-readable report of an ATR: the raw
// bytes, the T0 structure, the classification, and the data objects found
// among the historical bytes of a storage card ATR.
func Describe(raw []byte) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "ATR: %X", raw)

	if len(raw) >= 2 {
		// T0: high nibble flags interface bytes, low nibble counts the
		// historical bytes.
		fmt.Fprintf(&sb, "\nHistorical Bytes: %d", bits.GetRange(raw[1], 4, 1))
		if bits.IsSet(raw[1], 8) {
			sb.WriteString("\nInterface: TD1 present")
		}
	}

	c := Parse(raw)
	if !c.HasTagType {
		sb.WriteString("\nTag Type: unclassified")
		return sb.String()
	}

	fmt.Fprintf(&sb, "\nTag Type: %s", c.TagType)
	if c.HasStandard {
		fmt.Fprintf(&sb, "\nStandard: %s", c.Standard)
	}
	if c.HasCardName {
		fmt.Fprintf(&sb, "\nCard Name: %s", c.CardName)
	}

	for _, do := range initialAccessData(raw) {
		fmt.Fprintf(&sb, "\nData Object %s: %X", do.Tag, do.Value)
	}

	return sb.String()
}

// initialAccessData decodes the data objects following the category
// indicator of a storage card ATR. The trailing TCK checksum is not part
// of the TLV stream, so decoding is attempted with and without the last
// byte; an undecodable stream yields nothing.
func initialAccessData(raw []byte) []bertlv.TLV {
	if len(raw) < 6 || raw[4] != 0x80 {
		return nil
	}

	body := raw[5:]
	if packets, err := bertlv.Decode(body); err == nil {
		return packets
	}
	if len(body) > 1 {
		if packets, err := bertlv.Decode(body[:len(body)-1]); err == nil {
			return packets
		}
	}
	return nil
}

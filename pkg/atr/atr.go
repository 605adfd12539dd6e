// Package atr classifies contactless tags from their Answer To Reset.
//
// A PC/SC reader synthesizes an ATR for contactless cards. For storage
// cards the historical bytes carry an initial-access-data object (tag 4F)
// holding the PC/SC Workgroup RID, a one-byte standard code and a two-byte
// card name code. The classifier reads fixed offsets opportunistically: a
// short or partially recognized ATR yields fewer classified fields, never
// an error. The Standard and CardName enumerations are deliberately open,
// so cards newer than the tables degrade to "unknown" instead of failing.
package atr

import (
	"encoding/binary"
	"fmt"
)

// storageCardRID is the registered application provider identifier
// assigned to the PC/SC Workgroup for contactless storage cards.
var storageCardRID = [5]byte{0xA0, 0x00, 0x00, 0x03, 0x06}

// TagType is the broad family a tag belongs to.
type TagType int

const (
	// StorageCard is a memory-only tag addressed via pseudo-APDUs.
	StorageCard TagType = iota + 1
	// Iso14443Type4 is a protocol-capable card speaking ISO 14443-4.
	Iso14443Type4
)

// String returns a readable name for the tag type.
func (t TagType) String() string {
	switch t {
	case StorageCard:
		return "Storage Card"
	case Iso14443Type4:
		return "ISO 14443-4"
	}
	return fmt.Sprintf("TagType(%d)", int(t))
}

// Standard identifies the physical standard the tag follows, per the
// PC/SC Part 3 SS byte. The set is open.
type Standard byte

const (
	StandardNoInformation         Standard = 0x00
	StandardIso14443APart1        Standard = 0x01
	StandardIso14443APart2        Standard = 0x02
	StandardIso14443APart3        Standard = 0x03
	StandardIso14443BPart1        Standard = 0x05
	StandardIso14443BPart2        Standard = 0x06
	StandardIso14443BPart3        Standard = 0x07
	StandardIso15693Part1         Standard = 0x09
	StandardIso15693Part2         Standard = 0x0A
	StandardIso15693Part3         Standard = 0x0B
	StandardIso15693Part4         Standard = 0x0C
	StandardIso7816_10I2C         Standard = 0x0D
	StandardIso7816_10I2CExtended Standard = 0x0E
	StandardIso7816_10_2WBP       Standard = 0x0F
	StandardIso7816_10_3WBP       Standard = 0x10
	StandardFeliCa                Standard = 0x11
	StandardLowFrequency          Standard = 0x40
)

var standardNames = map[Standard]string{
	StandardNoInformation:         "No information",
	StandardIso14443APart1:        "ISO 14443 A, part 1",
	StandardIso14443APart2:        "ISO 14443 A, part 2",
	StandardIso14443APart3:        "ISO 14443 A, part 3",
	StandardIso14443BPart1:        "ISO 14443 B, part 1",
	StandardIso14443BPart2:        "ISO 14443 B, part 2",
	StandardIso14443BPart3:        "ISO 14443 B, part 3",
	StandardIso15693Part1:         "ISO 15693, part 1",
	StandardIso15693Part2:         "ISO 15693, part 2",
	StandardIso15693Part3:         "ISO 15693, part 3",
	StandardIso15693Part4:         "ISO 15693, part 4",
	StandardIso7816_10I2C:         "ISO 7816-10, I2C",
	StandardIso7816_10I2CExtended: "ISO 7816-10, extended I2C",
	StandardIso7816_10_2WBP:       "ISO 7816-10, 2WBP",
	StandardIso7816_10_3WBP:       "ISO 7816-10, 3WBP",
	StandardFeliCa:                "FeliCa",
	StandardLowFrequency:          "Low frequency contactless",
}

// String returns a readable name for the standard.
func (s Standard) String() string {
	if name, ok := standardNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Standard(0x%02X)", byte(s))
}

// lookupStandard resolves an SS byte; unknown values report false.
func lookupStandard(b byte) (Standard, bool) {
	_, ok := standardNames[Standard(b)]
	return Standard(b), ok
}

// CardName identifies the chip model, per the PC/SC Part 3 NN field.
// The set is open.
type CardName uint16

const (
	CardNoInformation        CardName = 0x0000
	CardMifareStandard1K     CardName = 0x0001
	CardMifareStandard4K     CardName = 0x0002
	CardMifareUltralight     CardName = 0x0003
	CardSLE55R               CardName = 0x0004
	CardSR176                CardName = 0x0006
	CardSRIX4K               CardName = 0x0007
	CardAT88RF020            CardName = 0x0008
	CardAT88SC0204CRF        CardName = 0x0009
	CardAT88SC0808CRF        CardName = 0x000A
	CardAT88SC1616CRF        CardName = 0x000B
	CardAT88SC3216CRF        CardName = 0x000C
	CardAT88SC6416CRF        CardName = 0x000D
	CardSRF55V10P            CardName = 0x000E
	CardSRF55V02P            CardName = 0x000F
	CardSRF55V10S            CardName = 0x0010
	CardSRF55V02S            CardName = 0x0011
	CardTagIt                CardName = 0x0012
	CardLRI512               CardName = 0x0013
	CardICodeSLI             CardName = 0x0014
	CardTempSens             CardName = 0x0015
	CardICode1               CardName = 0x0016
	CardPicoPass2K           CardName = 0x0017
	CardPicoPass2KS          CardName = 0x0018
	CardPicoPass16K          CardName = 0x0019
	CardPicoPass16KS         CardName = 0x001A
	CardPicoPass16K8x2       CardName = 0x001B
	CardPicoPass16KS8x2      CardName = 0x001C
	CardPicoPass32KS16_16    CardName = 0x001D
	CardPicoPass32KS16_8x2   CardName = 0x001E
	CardPicoPass32KS8x2_16   CardName = 0x001F
	CardPicoPass32KS8x2_8x2  CardName = 0x0020
	CardLRI64                CardName = 0x0021
	CardICodeUID             CardName = 0x0022
	CardICodeEPC             CardName = 0x0023
	CardLRI12                CardName = 0x0024
	CardLRI128               CardName = 0x0025
	CardMifareMini           CardName = 0x0026
	CardMyDMove              CardName = 0x0027
	CardMyDNFC               CardName = 0x0028
	CardMyDProximity2        CardName = 0x0029
	CardMyDProximityEnhanced CardName = 0x002A
	CardMyDLight             CardName = 0x002B
	CardPJMStackTag          CardName = 0x002C
	CardPJMItemTag           CardName = 0x002D
	CardPJMLight             CardName = 0x002E
	CardJewelTag             CardName = 0x002F
	CardTopazNFCTag          CardName = 0x0030
	CardAT88SC0104CRF        CardName = 0x0031
	CardAT88SC0404CRF        CardName = 0x0032
	CardAT88RF01C            CardName = 0x0033
	CardAT88RF04C            CardName = 0x0034
	CardICodeSL2             CardName = 0x0035
	CardMifarePlusSL1_2K     CardName = 0x0036
	CardMifarePlusSL1_4K     CardName = 0x0037
	CardMifarePlusSL2_2K     CardName = 0x0038
	CardMifarePlusSL2_4K     CardName = 0x0039
	CardMifareUltralightC    CardName = 0x003A
	CardFeliCa               CardName = 0x003B
	CardMelexisSensorTag     CardName = 0x003C
	CardMifareUltralightEV1  CardName = 0x003D
)

var cardNames = map[CardName]string{
	CardNoInformation:        "No information",
	CardMifareStandard1K:     "MIFARE Classic 1K",
	CardMifareStandard4K:     "MIFARE Classic 4K",
	CardMifareUltralight:     "MIFARE Ultralight",
	CardSLE55R:               "SLE55R_XXXX",
	CardSR176:                "SR176",
	CardSRIX4K:               "SRI X4K",
	CardAT88RF020:            "AT88RF020",
	CardAT88SC0204CRF:        "AT88SC0204 CRF",
	CardAT88SC0808CRF:        "AT88SC0808 CRF",
	CardAT88SC1616CRF:        "AT88SC1616 CRF",
	CardAT88SC3216CRF:        "AT88SC3216 CRF",
	CardAT88SC6416CRF:        "AT88SC6416 CRF",
	CardSRF55V10P:            "SRF55V10P",
	CardSRF55V02P:            "SRF55V02P",
	CardSRF55V10S:            "SRF55V10S",
	CardSRF55V02S:            "SRF55V02S",
	CardTagIt:                "TAG IT",
	CardLRI512:               "LRI512",
	CardICodeSLI:             "I-Code SLI",
	CardTempSens:             "TempSens",
	CardICode1:               "I-Code 1",
	CardPicoPass2K:           "PicoPass 2K",
	CardPicoPass2KS:          "PicoPass 2KS",
	CardPicoPass16K:          "PicoPass 16K",
	CardPicoPass16KS:         "PicoPass 16KS",
	CardPicoPass16K8x2:       "PicoPass 16K(8x2)",
	CardPicoPass16KS8x2:      "PicoPass 16KS(8x2)",
	CardPicoPass32KS16_16:    "PicoPass 32KS(16+16)",
	CardPicoPass32KS16_8x2:   "PicoPass 32KS(16+8x2)",
	CardPicoPass32KS8x2_16:   "PicoPass 32KS(8x2+16)",
	CardPicoPass32KS8x2_8x2:  "PicoPass 32KS(8x2+8x2)",
	CardLRI64:                "LRI64",
	CardICodeUID:             "I-Code UID",
	CardICodeEPC:             "I-Code EPC",
	CardLRI12:                "LRI12",
	CardLRI128:               "LRI128",
	CardMifareMini:           "MIFARE Mini",
	CardMyDMove:              "my-d move",
	CardMyDNFC:               "my-d NFC",
	CardMyDProximity2:        "my-d proximity 2",
	CardMyDProximityEnhanced: "my-d proximity enhanced",
	CardMyDLight:             "my-d light",
	CardPJMStackTag:          "PJM Stack Tag",
	CardPJMItemTag:           "PJM Item Tag",
	CardPJMLight:             "PJM Light",
	CardJewelTag:             "Jewel Tag",
	CardTopazNFCTag:          "Topaz NFC Tag",
	CardAT88SC0104CRF:        "AT88SC0104 CRF",
	CardAT88SC0404CRF:        "AT88SC0404 CRF",
	CardAT88RF01C:            "AT88RF01C",
	CardAT88RF04C:            "AT88RF04C",
	CardICodeSL2:             "I-Code SL2",
	CardMifarePlusSL1_2K:     "MIFARE Plus SL1 2K",
	CardMifarePlusSL1_4K:     "MIFARE Plus SL1 4K",
	CardMifarePlusSL2_2K:     "MIFARE Plus SL2 2K",
	CardMifarePlusSL2_4K:     "MIFARE Plus SL2 4K",
	CardMifareUltralightC:    "MIFARE Ultralight C",
	CardFeliCa:               "FeliCa",
	CardMelexisSensorTag:     "Melexis Sensor Tag (MLX90129)",
	CardMifareUltralightEV1:  "MIFARE Ultralight EV1",
}

// String returns a readable name for the chip model.
func (c CardName) String() string {
	if name, ok := cardNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CardName(0x%04X)", uint16(c))
}

// lookupCardName resolves an NN code; unknown values report false.
func lookupCardName(code uint16) (CardName, bool) {
	_, ok := cardNames[CardName(code)]
	return CardName(code), ok
}

// Classification is the result of decoding an ATR. All three fields are
// independently optional, because the underlying ATR rarely carries full
// information; each value is meaningful only when its Has flag is set.
type Classification struct {
	TagType  TagType
	Standard Standard
	CardName CardName

	HasTagType  bool
	HasStandard bool
	HasCardName bool
}

// Parse classifies a raw ATR against the fixed PC/SC byte templates.
// It is pure and total: unrecognized or truncated input yields an empty
// classification, never an error.
func Parse(raw []byte) Classification {
	var c Classification

	if len(raw) < 5 || raw[0] != 0x3B || raw[2] != 0x80 || raw[3] != 0x01 {
		return c
	}

	if raw[4] != 0x80 {
		// Protocol-capable card per MSDN and the PC/SC spec.
		c.TagType, c.HasTagType = Iso14443Type4, true
		return c
	}

	switch {
	case len(raw) > 5 && raw[5] == 0x4F:
		// Storage card: category indicator 0x80 followed by the
		// initial-access-data object.
		c.TagType, c.HasTagType = StorageCard, true
		if len(raw) < 12 || [5]byte(raw[7:12]) != storageCardRID {
			return c
		}
		if len(raw) >= 14 {
			if s, ok := lookupStandard(raw[13]); ok {
				c.Standard, c.HasStandard = s, true
			}
		}
		if len(raw) >= 16 {
			if name, ok := lookupCardName(binary.BigEndian.Uint16(raw[14:16])); ok {
				c.CardName, c.HasCardName = name, true
			}
		}
	case raw[1] == 0x81 && len(raw) > 5 && raw[5] == 0x80:
		// MIFARE DESFire and friends: multi-application storage family.
		c.TagType, c.HasTagType = StorageCard, true
	}

	return c
}

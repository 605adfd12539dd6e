package atr

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/RoastVeg/nfc-pcsc/pkg/hexutil"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want Classification
	}{
		{
			name: "Storage card with standard and card name",
			raw:  hexutil.Hex("3B 20 80 01 80 4F 00 A0 00 00 03 06 00 01 00 01"),
			want: Classification{
				TagType:     StorageCard,
				Standard:    StandardIso14443APart1,
				CardName:    CardMifareStandard1K,
				HasTagType:  true,
				HasStandard: true,
				HasCardName: true,
			},
		},
		{
			name: "MIFARE Ultralight",
			raw:  hexutil.Hex("3B 8F 80 01 80 4F 0C A0 00 00 03 06 03 03 00 03 00 00 00 00"),
			want: Classification{
				TagType:     StorageCard,
				Standard:    StandardIso14443APart3,
				CardName:    CardMifareUltralight,
				HasTagType:  true,
				HasStandard: true,
				HasCardName: true,
			},
		},
		{
			name: "DESFire style multi-application storage",
			raw:  hexutil.Hex("3B 81 80 01 80 80"),
			want: Classification{TagType: StorageCard, HasTagType: true},
		},
		{
			name: "Protocol capable ISO 14443-4 card",
			raw:  hexutil.Hex("3B 88 80 01 04 33 B0 01 02 79 09 08 90 00 79"),
			want: Classification{TagType: Iso14443Type4, HasTagType: true},
		},
		{
			name: "Storage card with foreign RID",
			raw:  hexutil.Hex("3B 20 80 01 80 4F 00 A0 00 00 03 07 00 01 00 01"),
			want: Classification{TagType: StorageCard, HasTagType: true},
		},
		{
			name: "Unknown standard still classifies the card name",
			raw:  hexutil.Hex("3B 20 80 01 80 4F 00 A0 00 00 03 06 00 44 00 01"),
			want: Classification{
				TagType:     StorageCard,
				CardName:    CardMifareStandard1K,
				HasTagType:  true,
				HasCardName: true,
			},
		},
		{
			name: "Unknown card name degrades to none",
			raw:  hexutil.Hex("3B 20 80 01 80 4F 00 A0 00 00 03 06 00 01 01 05"),
			want: Classification{
				TagType:     StorageCard,
				Standard:    StandardIso14443APart1,
				HasTagType:  true,
				HasStandard: true,
			},
		},
		{
			name: "Truncated after the RID",
			raw:  hexutil.Hex("3B 20 80 01 80 4F 00 A0 00 00 03 06"),
			want: Classification{TagType: StorageCard, HasTagType: true},
		},
		{
			name: "Category indicator with nothing behind it",
			raw:  hexutil.Hex("3B 20 80 01 80"),
			want: Classification{},
		},
		{
			name: "Category indicator with unrecognized object",
			raw:  hexutil.Hex("3B 20 80 01 80 51 00"),
			want: Classification{},
		},
		{
			name: "Too short",
			raw:  hexutil.Hex("3B 20 80 01"),
			want: Classification{},
		},
		{
			name: "Not an ATR",
			raw:  hexutil.Hex("00 11 22 33 44 55"),
			want: Classification{},
		},
		{
			name: "Empty",
			raw:  nil,
			want: Classification{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStandard_String(t *testing.T) {
	if got := StandardFeliCa.String(); got != "FeliCa" {
		t.Errorf("String() = %q", got)
	}
	if got := Standard(0x7F).String(); got != "Standard(0x7F)" {
		t.Errorf("String() for unknown value = %q", got)
	}
}

func TestCardName_String(t *testing.T) {
	if got := CardMifareUltralightEV1.String(); got != "MIFARE Ultralight EV1" {
		t.Errorf("String() = %q", got)
	}
	if got := CardName(0x0105).String(); got != "CardName(0x0105)" {
		t.Errorf("String() for unknown value = %q", got)
	}
}

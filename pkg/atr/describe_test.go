package atr

import (
	"strings"
	"testing"

	"github.com/RoastVeg/nfc-pcsc/pkg/hexutil"
)

func TestDescribe_StorageCard(t *testing.T) {
	raw := hexutil.Hex("3B 8F 80 01 80 4F 0C A0 00 00 03 06 03 03 00 03 00 00 00 00")

	report := Describe(raw)

	for _, want := range []string{
		"ATR: 3B8F8001804F0CA0000003060303000300000000",
		"Historical Bytes: 15",
		"Interface: TD1 present",
		"Tag Type: Storage Card",
		"Standard: ISO 14443 A, part 3",
		"Card Name: MIFARE Ultralight",
		"Data Object 4F",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestDescribe_Unclassified(t *testing.T) {
	report := Describe(hexutil.Hex("00 11 22"))

	if !strings.Contains(report, "Tag Type: unclassified") {
		t.Errorf("report should flag an unclassified tag:\n%s", report)
	}
}

func TestDescribe_Iso14443Type4(t *testing.T) {
	report := Describe(hexutil.Hex("3B 88 80 01 04 33 B0 01 02 79 09 08 90 00 79"))

	if !strings.Contains(report, "Tag Type: ISO 14443-4") {
		t.Errorf("report should classify the protocol card:\n%s", report)
	}
	if strings.Contains(report, "Data Object") {
		t.Errorf("non storage card should have no data objects:\n%s", report)
	}
}

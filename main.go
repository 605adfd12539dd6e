package main

import (
	"fmt"
	"log"
	"time"

	"github.com/ebfe/scard"

	"github.com/RoastVeg/nfc-pcsc/pkg/atr"
	"github.com/RoastVeg/nfc-pcsc/pkg/pcsc"
	"github.com/RoastVeg/nfc-pcsc/pkg/reader"
)

// mifareTransportKey is the factory default key of MIFARE Classic cards.
var mifareTransportKey = []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

func main() {
	// --- 1. Hardware Setup ---
	ctx, rdr := pickReader()

	defer func() {
		if err := ctx.Release(); err != nil {
			log.Printf("Warning: Failed to release context: %v", err)
		}
	}()

	// --- 2. Wait for a Tag ---
	fmt.Println(">> Present a tag to the reader...")
	session, err := rdr.WaitForCard(0)
	if err != nil {
		log.Fatalf("Error waiting for card: %s", err)
	}

	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("Warning: Failed to disconnect card: %v", err)
		}
	}()

	// --- 3. Execution Flow ---

	// Step 1: Classify the tag from its ATR
	fmt.Println("\n=============================================")
	fmt.Println(" Step 1: ATR CLASSIFICATION")
	fmt.Println("=============================================")
	fmt.Println(atr.Describe(session.ATR))

	tag := session.Tag()

	// Step 2: Fetch the UID
	step2FetchUID(tag)

	// Step 3: Authenticate and read block 4 (storage cards only)
	if session.Info.HasTagType && session.Info.TagType == atr.StorageCard {
		step3ReadBlock(tag)
	} else {
		fmt.Println("\n>> Step 3 Skipped: not a storage card.")
	}

	fmt.Println("\n>> Demo Finished Successfully")
}

// pickReader handles PC/SC context establishment and reader selection.
func pickReader() (*scard.Context, *reader.Reader) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		log.Fatalf("Error establishing context: %s", err)
	}

	readers, err := reader.List(ctx)
	if err != nil || len(readers) == 0 {
		if relErr := ctx.Release(); relErr != nil {
			log.Printf("Warning: Failed to release context during error handling: %v", relErr)
		}
		log.Fatal("No smart card reader found.")
	}

	fmt.Printf(">> Using reader: %s\n", readers[0].Name())
	return ctx, readers[0]
}

// step2FetchUID reads the card identification data via GET DATA.
func step2FetchUID(tag *pcsc.Tag) {
	fmt.Println("\n=============================================")
	fmt.Println(" Step 2: GET DATA (UID)")
	fmt.Println("=============================================")

	uid, err := tag.UID()
	if err != nil {
		log.Printf("Step 2 Warning: %v", err)
		return
	}
	fmt.Printf("UID: %X\n", uid)
}

// step3ReadBlock loads the transport key, authenticates block 4 with key A
// and dumps its 16 bytes.
func step3ReadBlock(tag *pcsc.Tag) {
	fmt.Println("\n=============================================")
	fmt.Println(" Step 3: AUTHENTICATE + READ BINARY (block 4)")
	fmt.Println("=============================================")

	start := time.Now()

	if err := tag.LoadKey(0x00, mifareTransportKey); err != nil {
		log.Printf("Step 3 Warning: %v", err)
		return
	}

	const block = 0x0004
	if err := tag.Authenticate(block, pcsc.KeyTypeA, 0x00); err != nil {
		log.Printf("Step 3 Warning: %v", err)
		return
	}

	data, err := tag.ReadBlock(block, 16)
	if err != nil {
		log.Printf("Step 3 Warning: %v", err)
		return
	}

	fmt.Printf("Block %d: %X (read in %s)\n", block, data, time.Since(start).Round(time.Millisecond))
}

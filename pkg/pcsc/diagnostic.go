package pcsc

// Diagnostic lookup for status words, per the PC/SC Part 3 error tables.
//
// The same SW2 value often means different things depending on which
// instruction produced it: 69 82 is "card key not supported" after a
// LOAD KEYS but "security status not satisfied" after a GENERAL
// AUTHENTICATE. The lookup is therefore keyed by (family, SW2) for most
// families and by (instruction, SW2) under 0x69.
//
// The tables are advisory and deliberately incomplete: an absent mapping
// is not an error, it just means PC/SC assigns no specific meaning.

// Diagnostic identifies a spec-defined condition behind a status word.
type Diagnostic int

const (
	NoDiagnostic Diagnostic = iota
	ResponseCorrupted
	UnexpectedEndOfData
	AddressDoesNotExist
	WritingFailed
	CommandIncompatible
	CardKeyNotSupported
	ReaderKeyNotSupported
	PlainTransmissionNotSupported
	SecuredTransmissionNotSupported
	VolatileMemoryUnavailable
	NonVolatileMemoryUnavailable
	KeyNumberNotValid
	KeyLengthIncorrect
	SecurityStatusUnsatisfied
	ReferenceKeyUnusable
	UnknownKeyType
	CommandNotAllowed
	FunctionNotSupported
	FileNotFound
	ReferenceDataNotFound
)

var diagnosticNames = map[Diagnostic]string{
	NoDiagnostic:                    "no diagnostic",
	ResponseCorrupted:               "part of the response may be corrupted",
	UnexpectedEndOfData:             "end of data reached before Le bytes",
	AddressDoesNotExist:             "address does not exist",
	WritingFailed:                   "memory write failed",
	CommandIncompatible:             "command incompatible with file structure",
	CardKeyNotSupported:             "card key not supported",
	ReaderKeyNotSupported:           "reader key not supported",
	PlainTransmissionNotSupported:   "plain transmission not supported",
	SecuredTransmissionNotSupported: "secured transmission not supported",
	VolatileMemoryUnavailable:       "volatile memory not available",
	NonVolatileMemoryUnavailable:    "non-volatile memory not available",
	KeyNumberNotValid:               "key number not valid",
	KeyLengthIncorrect:              "key length incorrect",
	SecurityStatusUnsatisfied:       "security status not satisfied",
	ReferenceKeyUnusable:            "reference key not usable",
	UnknownKeyType:                  "unknown key type",
	CommandNotAllowed:               "command not allowed",
	FunctionNotSupported:            "function not supported",
	FileNotFound:                    "file not found / addressed block or byte does not exist",
	ReferenceDataNotFound:           "referenced data not found",
}

// String returns the PC/SC wording for the diagnostic.
func (d Diagnostic) String() string {
	if name, ok := diagnosticNames[d]; ok {
		return name
	}
	return "no diagnostic"
}

// Diagnose resolves a status word to its PC/SC-defined meaning, given the
// instruction that produced it. It returns false for any combination the
// tables do not list.
func Diagnose(st Status, ins InsCode) (Diagnostic, bool) {
	switch s := st.(type) {
	case Warning:
		switch s.SW2 {
		case 0x81:
			return ResponseCorrupted, true
		case 0x82:
			return UnexpectedEndOfData, true
		}
	case MemoryFailure:
		if s.SW2 != 0x81 {
			break
		}
		switch ins {
		case InsGetData, InsGeneralAuthenticate:
			return AddressDoesNotExist, true
		case InsVerify, InsUpdateBinary:
			return WritingFailed, true
		}
	case CommandImpossible:
		return diagnoseCommandImpossible(ins, s.SW2)
	case CommandError:
		switch s.SW2 {
		case 0x81:
			return FunctionNotSupported, true
		case 0x82:
			return FileNotFound, true
		case 0x88:
			return ReferenceDataNotFound, true
		}
	}
	return NoDiagnostic, false
}

// diagnoseCommandImpossible handles the 0x69 family, where SW2 meaning is
// instruction-specific.
func diagnoseCommandImpossible(ins InsCode, sw2 byte) (Diagnostic, bool) {
	switch ins {
	case InsLoadKeys:
		switch sw2 {
		case 0x82:
			return CardKeyNotSupported, true
		case 0x83:
			return ReaderKeyNotSupported, true
		case 0x84:
			return PlainTransmissionNotSupported, true
		case 0x85:
			return SecuredTransmissionNotSupported, true
		case 0x86:
			return VolatileMemoryUnavailable, true
		case 0x87:
			return NonVolatileMemoryUnavailable, true
		case 0x88:
			return KeyNumberNotValid, true
		case 0x89:
			return KeyLengthIncorrect, true
		}
	case InsGeneralAuthenticate:
		switch sw2 {
		case 0x82:
			return SecurityStatusUnsatisfied, true
		case 0x83:
			return CommandNotAllowed, true
		case 0x84:
			return ReferenceKeyUnusable, true
		case 0x86:
			return UnknownKeyType, true
		case 0x88:
			return KeyNumberNotValid, true
		}
	case InsVerify:
		switch sw2 {
		case 0x82:
			return SecurityStatusUnsatisfied, true
		case 0x83:
			return CommandNotAllowed, true
		case 0x84:
			return ReferenceKeyUnusable, true
		}
	case InsReadBinary, InsUpdateBinary:
		switch sw2 {
		case 0x81:
			return CommandIncompatible, true
		case 0x82:
			return SecurityStatusUnsatisfied, true
		case 0x86:
			return CommandNotAllowed, true
		}
	}
	return NoDiagnostic, false
}

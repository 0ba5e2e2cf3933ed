package decoder

import "fmt"

// ErrorKind is the closed enumeration of decode failure kinds from spec §7.
// Every stage of the pipeline fails with exactly one of these.
type ErrorKind uint8

const (
	_ ErrorKind = iota
	ErrBufferTooSmall
	ErrInstructionTooLong
	ErrInvalidEncoding
	ErrInvalidEncodingInMode
	ErrInvalidPrefixSequence
	ErrXopWithPrefix
	ErrVexWithPrefix
	ErrEvexWithPrefix
	ErrBadEvexV
	ErrBadEvexVPrime
	ErrBadEvexLL
	ErrBadEvexU
	ErrInvalidEvexByte3
	ErrVexVvvvMustBeZero
	ErrInvalidRegisterInInstruction
	ErrInvalidVsibRegs
	ErrInvalidTileRegs
	ErrInvalidDestRegs
	ErrBadLockPrefix
	ErrMaskRequired
	ErrMaskNotSupported
	ErrZeroingOnMemory
	ErrZeroingNoMask
	ErrZeroingNotSupported
	ErrBroadcastNotSupported
	ErrErSaeNotSupported
	ErrRipRelAddressingNotSupported
	Err16BitAddressingNotSupported
	ErrCsLoad
	ErrInvalidInstruction
	ErrInvalidParameter
)

var errorText = map[ErrorKind]string{
	ErrBufferTooSmall:               "buffer too small",
	ErrInstructionTooLong:           "instruction too long",
	ErrInvalidEncoding:              "invalid encoding",
	ErrInvalidEncodingInMode:        "invalid encoding in current mode",
	ErrInvalidPrefixSequence:        "invalid prefix sequence",
	ErrXopWithPrefix:                "XOP combined with incompatible prefix",
	ErrVexWithPrefix:                "VEX combined with incompatible prefix",
	ErrEvexWithPrefix:               "EVEX combined with incompatible prefix",
	ErrBadEvexV:                     "invalid EVEX.V in current mode",
	ErrBadEvexVPrime:                "invalid EVEX.V'",
	ErrBadEvexLL:                    "invalid EVEX.L'L",
	ErrBadEvexU:                     "invalid EVEX.U",
	ErrInvalidEvexByte3:             "invalid EVEX byte 3",
	ErrVexVvvvMustBeZero:            "VEX.vvvv must be zero",
	ErrInvalidRegisterInInstruction: "invalid register number for this instruction",
	ErrInvalidVsibRegs:              "invalid VSIB register combination",
	ErrInvalidTileRegs:              "invalid AMX tile register combination",
	ErrInvalidDestRegs:              "invalid destination register combination",
	ErrBadLockPrefix:                "LOCK prefix not valid on this instruction",
	ErrMaskRequired:                 "mask register required",
	ErrMaskNotSupported:             "mask register not supported",
	ErrZeroingOnMemory:              "zeroing decorator not valid with memory destination",
	ErrZeroingNoMask:                "zeroing decorator requires a mask register",
	ErrZeroingNotSupported:          "zeroing decorator not supported",
	ErrBroadcastNotSupported:        "broadcast decorator not supported",
	ErrErSaeNotSupported:            "embedded rounding/SAE not supported",
	ErrRipRelAddressingNotSupported: "RIP-relative addressing not supported in this mode",
	Err16BitAddressingNotSupported:  "16-bit addressing not supported in this mode",
	ErrCsLoad:                       "invalid CS load",
	ErrInvalidInstruction:           "invalid instruction",
	ErrInvalidParameter:             "invalid parameter",
}

func (k ErrorKind) String() string {
	if s, ok := errorText[k]; ok {
		return s
	}
	return "unknown decode error"
}

// DecodeError is the error type returned by every decoder entry point. Offset
// is the cursor position (from the start of the input buffer) at which the
// failure was detected; it is meaningful for BufferTooSmall/InstructionTooLong
// and best-effort for the rest.
type DecodeError struct {
	Kind   ErrorKind
	Offset int
}

func newErr(kind ErrorKind, offset int) *DecodeError {
	return &DecodeError{Kind: kind, Offset: offset}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("x86decode: %s (offset %d)", e.Kind, e.Offset)
}

// Is reports whether target is a *DecodeError of the same Kind, so
// errors.Is(err, &DecodeError{Kind: k}) matches any error of kind k.
// ErrorKind is not itself an error; callers compare Kind directly, or use
// IsKind for the common case.
func (e *DecodeError) Is(target error) bool {
	other, ok := target.(*DecodeError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// IsKind reports whether err is a *DecodeError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := err.(*DecodeError)
	if !ok {
		return false
	}
	return de.Kind == kind
}

package decoder_test

import (
	"testing"

	"github.com/keurnel/x86decode/decoder"
)

// TestEvexVPrimeRejectedOutsideMode64 exercises the EVEX.V' validity check,
// which only applies outside 64-bit mode: V' set (the decoded, non-inverted
// bit) is invalid in 32/16-bit mode, where EVEX has no fifth register-number
// bit to offer.
func TestEvexVPrimeRejectedOutsideMode64(t *testing.T) {
	_, err := decoder.Decode([]byte{0x62, 0xF1, 0x7C, 0x40}, decoder.Mode32Config())
	if !decoder.IsKind(err, decoder.ErrBadEvexVPrime) {
		t.Fatalf("err = %v, want ErrBadEvexVPrime", err)
	}
}

// TestEvexVPrimeClearAcceptedOutsideMode64 is the positive counterpart: V'
// clear is the only value 32-bit mode accepts, and decoding proceeds.
func TestEvexVPrimeClearAcceptedOutsideMode64(t *testing.T) {
	_, err := decoder.Decode([]byte{0x62, 0xF1, 0x7C, 0x48, 0x10, 0x00}, decoder.Mode32Config())
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}
}

// TestEvexVvvvRegisterNumberAbove15 exercises the EVEX vvvv H-slot operand
// with V' set in 64-bit mode: the decoded register number must fold in the
// fifth bit (16) rather than being rejected or truncated to 0-15.
func TestEvexVvvvRegisterNumberAbove15(t *testing.T) {
	// vaddps zmm0, zmm31, zmm1: vvvv=1111 decoded with V'=1 selects zmm31
	// as the second (vvvv) source.
	ins, err := decoder.Decode([]byte{0x62, 0xF1, 0x00, 0x40, 0x58, 0xC1}, decoder.Mode64Config())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(ins.Operands) != 3 {
		t.Fatalf("len(Operands) = %d, want 3", len(ins.Operands))
	}
	got := ins.Operands[1].Register.Number
	if got != 31 {
		t.Errorf("vvvv operand register number = %d, want 31", got)
	}
}

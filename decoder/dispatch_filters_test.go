package decoder_test

import (
	"testing"

	"github.com/keurnel/x86decode/decoder"
)

// TestDispatchFilterRejections covers the filter, register-filter, and
// distinct-register-filter node kinds added for EVEX/VEX dispatch: each
// case is an encoding that resolves to the right map/opcode/pp slot but
// fails one specific named filter.
func TestDispatchFilterRejections(t *testing.T) {
	tests := []struct {
		name     string
		bytes    []byte
		mode     decoder.ModeConfig
		wantKind decoder.ErrorKind
	}{
		{
			name:     "VEX2 VZEROUPPER slot with nonzero vvvv",
			bytes:    []byte{0xC5, 0xF0, 0x77},
			mode:     decoder.Mode64Config(),
			wantKind: decoder.ErrVexVvvvMustBeZero,
		},
		{
			name:     "MOV CRn targeting reserved CR1",
			bytes:    []byte{0x0F, 0x20, 0xC8},
			mode:     decoder.Mode64Config(),
			wantKind: decoder.ErrInvalidRegisterInInstruction,
		},
		{
			name:     "MOV Sreg targeting CS",
			bytes:    []byte{0x8E, 0xC8},
			mode:     decoder.Mode64Config(),
			wantKind: decoder.ErrCsLoad,
		},
		{
			name:     "VGATHERDPS with colliding dest/mask/index",
			bytes:    []byte{0x62, 0xF2, 0x79, 0x08, 0x92, 0xC0},
			mode:     decoder.Mode64Config(),
			wantKind: decoder.ErrInvalidVsibRegs,
		},
		{
			name:     "VGATHERDPS under 16-bit addressing",
			bytes:    []byte{0x67, 0x62, 0xF2, 0x79, 0x08, 0x92, 0xC0},
			mode:     decoder.Mode32Config(),
			wantKind: decoder.Err16BitAddressingNotSupported,
		},
		{
			name:     "TDPBSSD with colliding tile registers",
			bytes:    []byte{0x62, 0xF2, 0x79, 0x00, 0x5E, 0xC0},
			mode:     decoder.Mode64Config(),
			wantKind: decoder.ErrInvalidTileRegs,
		},
		{
			name:     "VP4DPWSSD with dest overlapping vvvv",
			bytes:    []byte{0x62, 0xF2, 0x7B, 0x08, 0x52, 0xC1},
			mode:     decoder.Mode64Config(),
			wantKind: decoder.ErrInvalidDestRegs,
		},
		{
			name:     "BNDMK with RIP-relative addressing",
			bytes:    []byte{0xF3, 0x0F, 0x1B, 0x05, 0x00, 0x00, 0x00, 0x00},
			mode:     decoder.Mode64Config(),
			wantKind: decoder.ErrRipRelAddressingNotSupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decoder.Decode(tt.bytes, tt.mode)
			if !decoder.IsKind(err, tt.wantKind) {
				t.Fatalf("err = %v, want %v", err, tt.wantKind)
			}
		})
	}
}

// TestDecodeCcmpSelectsConditionFromStandardConditionField confirms the
// APX conditional EVEX family (CCMP) picks its mnemonic from EVEX's
// standard-condition field rather than the opcode byte alone.
func TestDecodeCcmpSelectsConditionFromStandardConditionField(t *testing.T) {
	apxMode := decoder.Mode64Config()
	apxMode.Features = decoder.FeatureAPX

	ccmpno, err := decoder.Decode([]byte{0x62, 0xF4, 0x7C, 0x01, 0x38, 0xC0}, apxMode)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ccmpno.Entry.Mnemonic != "ccmpno" {
		t.Errorf("Mnemonic = %q, want ccmpno", ccmpno.Entry.Mnemonic)
	}

	ccmpo, err := decoder.Decode([]byte{0x62, 0xF4, 0x7C, 0x00, 0x38, 0xC0}, apxMode)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ccmpo.Entry.Mnemonic != "ccmpo" {
		t.Errorf("Mnemonic = %q, want ccmpo", ccmpo.Entry.Mnemonic)
	}
}

// TestDecodeApxPromotedAddActivatesDecorators confirms a legacy-promoted
// APX opcode with both its ND and NF raw bits set activates NewDataDest,
// ZeroUpper (reusing ND's raw bit, gated by the entry's AttrZU rather than
// AttrND), and NoFlags, and that ZeroUpper only lands on the written
// register operand.
func TestDecodeApxPromotedAddActivatesDecorators(t *testing.T) {
	apxMode := decoder.Mode64Config()
	apxMode.Features = decoder.FeatureAPX

	ins, err := decoder.Decode([]byte{0x62, 0xF4, 0x7C, 0x14, 0x39, 0xC0}, apxMode)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ins.Entry.Mnemonic != "add" {
		t.Fatalf("Mnemonic = %q, want add", ins.Entry.Mnemonic)
	}
	if !ins.Decorators.NewDataDest {
		t.Error("Decorators.NewDataDest = false, want true")
	}
	if !ins.Decorators.NoFlags {
		t.Error("Decorators.NoFlags = false, want true")
	}
	if len(ins.Operands) != 2 {
		t.Fatalf("len(Operands) = %d, want 2", len(ins.Operands))
	}
	dst := ins.Operands[0]
	if dst.Kind != decoder.OperandRegister || !dst.Register.ZeroUpper {
		t.Errorf("dst = %+v, want a register operand with ZeroUpper set", dst)
	}
	src := ins.Operands[1]
	if src.Kind == decoder.OperandRegister && src.Register.ZeroUpper {
		t.Error("src.Register.ZeroUpper = true, want false (read-only operand)")
	}
}

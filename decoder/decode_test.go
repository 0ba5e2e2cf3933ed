package decoder_test

import (
	"testing"

	"github.com/keurnel/x86decode/decoder"
)

// TestDecodeEndToEndScenarios covers the eight end-to-end decode scenarios:
// a bare NOP, a register-form MOV, a memory-addressed MOV under an
// address-size override, VZEROUPPER via VEX2, VMOVUPS via EVEX with a
// compressed displacement, LOCK CMPXCHG, REX2 ADD, and a multi-byte NOP
// carrying an inert branch-hint prefix.
func TestDecodeEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name       string
		bytes      []byte
		mode       decoder.ModeConfig
		wantLength int
		wantMnem   string
		wantOps    int
	}{
		{
			name:       "bare NOP",
			bytes:      []byte{0x90},
			mode:       decoder.Mode64Config(),
			wantLength: 1,
			wantMnem:   "nop",
			wantOps:    0,
		},
		{
			name:       "register MOV RAX, RBX",
			bytes:      []byte{0x48, 0x89, 0xD8},
			mode:       decoder.Mode64Config(),
			wantLength: 3,
			wantMnem:   "mov",
			wantOps:    2,
		},
		{
			name:       "memory MOV with address-size override",
			bytes:      []byte{0x67, 0x89, 0x18},
			mode:       decoder.Mode64Config(),
			wantLength: 3,
			wantMnem:   "mov",
			wantOps:    2,
		},
		{
			name:       "VZEROUPPER via VEX2",
			bytes:      []byte{0xC5, 0xF8, 0x77},
			mode:       decoder.Mode64Config(),
			wantLength: 3,
			wantMnem:   "vzeroupper",
			wantOps:    0,
		},
		{
			name:       "VMOVUPS via EVEX with compressed displacement",
			bytes:      []byte{0x62, 0xF1, 0x7C, 0x48, 0x10, 0x00},
			mode:       decoder.Mode64Config(),
			wantLength: 6,
			wantMnem:   "vmovups",
			wantOps:    2,
		},
		{
			name:       "LOCK CMPXCHG",
			bytes:      []byte{0xF0, 0x0F, 0xB1, 0x18},
			mode:       decoder.Mode64Config(),
			wantLength: 4,
			wantMnem:   "cmpxchg",
			wantOps:    2,
		},
		{
			name:       "REX2 ADD",
			bytes:      []byte{0xD5, 0x00, 0x01, 0xD8},
			mode:       decoder.ModeConfig{CodeMode: decoder.Mode64, DataMode: decoder.Mode64, StackMode: decoder.Mode64, Features: decoder.FeatureAPX},
			wantLength: 4,
			wantMnem:   "add",
			wantOps:    2,
		},
		{
			name:       "multi-byte NOP with inert branch hint",
			bytes:      []byte{0x2E, 0x0F, 0x1F, 0x00},
			mode:       decoder.Mode64Config(),
			wantLength: 4,
			wantMnem:   "nop",
			wantOps:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, err := decoder.Decode(tt.bytes, tt.mode)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if ins.Length != tt.wantLength {
				t.Errorf("Length = %d, want %d", ins.Length, tt.wantLength)
			}
			if ins.Entry == nil {
				t.Fatalf("Entry = nil")
			}
			if ins.Entry.Mnemonic != tt.wantMnem {
				t.Errorf("Mnemonic = %q, want %q", ins.Entry.Mnemonic, tt.wantMnem)
			}
			if len(ins.Operands) != tt.wantOps {
				t.Errorf("len(Operands) = %d, want %d", len(ins.Operands), tt.wantOps)
			}
		})
	}
}

func TestDecodeRegisterMOVOperands(t *testing.T) {
	ins, err := decoder.Decode([]byte{0x48, 0x89, 0xD8}, decoder.Mode64Config())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ins.EffectiveOperandSize != 64 {
		t.Errorf("EffectiveOperandSize = %d, want 64", ins.EffectiveOperandSize)
	}
	if len(ins.Operands) != 2 {
		t.Fatalf("len(Operands) = %d, want 2", len(ins.Operands))
	}
	dst := ins.Operands[0]
	src := ins.Operands[1]
	if dst.Kind != decoder.OperandRegister || dst.Register.Number != 0 {
		t.Errorf("dst = %+v, want rax", dst)
	}
	if src.Kind != decoder.OperandRegister || src.Register.Number != 3 {
		t.Errorf("src = %+v, want rbx", src)
	}
}

func TestDecodeVzeroupperVsVzeroall(t *testing.T) {
	upper, err := decoder.Decode([]byte{0xC5, 0xF8, 0x77}, decoder.Mode64Config())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if upper.Entry.Mnemonic != "vzeroupper" {
		t.Errorf("Mnemonic = %q, want vzeroupper", upper.Entry.Mnemonic)
	}

	all, err := decoder.Decode([]byte{0xC5, 0xFC, 0x77}, decoder.Mode64Config())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if all.Entry.Mnemonic != "vzeroall" {
		t.Errorf("Mnemonic = %q, want vzeroall", all.Entry.Mnemonic)
	}
}

func TestDecodeLockOnNonLockableRejected(t *testing.T) {
	_, err := decoder.Decode([]byte{0xF0, 0x90}, decoder.Mode64Config())
	if !decoder.IsKind(err, decoder.ErrBadLockPrefix) {
		t.Fatalf("err = %v, want ErrBadLockPrefix", err)
	}
}

func TestDecodeBufferTooSmall(t *testing.T) {
	_, err := decoder.Decode([]byte{0x48, 0x89}, decoder.Mode64Config())
	if !decoder.IsKind(err, decoder.ErrBufferTooSmall) {
		t.Fatalf("err = %v, want ErrBufferTooSmall", err)
	}
}

func TestDecodeCompactThenMaterialize(t *testing.T) {
	ci, err := decoder.DecodeCompact([]byte{0x48, 0x89, 0xD8}, decoder.Mode64Config())
	if err != nil {
		t.Fatalf("DecodeCompact() error = %v", err)
	}
	if ci.Mnemonic() != "mov" {
		t.Errorf("Mnemonic() = %q, want mov", ci.Mnemonic())
	}
	op, err := decoder.MaterializeOperand(ci, 0)
	if err != nil {
		t.Fatalf("MaterializeOperand() error = %v", err)
	}
	if op.Kind != decoder.OperandRegister {
		t.Errorf("op.Kind = %v, want OperandRegister", op.Kind)
	}
}

func TestDecodeRejectsTooLongInstruction(t *testing.T) {
	buf := make([]byte, 20)
	for i := range buf {
		buf[i] = 0x2E // segment-override prefix, repeats indefinitely
	}
	buf[19] = 0x90
	_, err := decoder.Decode(buf, decoder.Mode64Config())
	if !decoder.IsKind(err, decoder.ErrInstructionTooLong) {
		t.Fatalf("err = %v, want ErrInstructionTooLong", err)
	}
}

package decoder_test

import (
	"testing"

	"github.com/keurnel/x86decode/decoder"
)

func TestModRMRIPRelative(t *testing.T) {
	ins, err := decoder.Decode([]byte{0x89, 0x05, 0x01, 0x02, 0x03, 0x04}, decoder.Mode64Config())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !ins.RIPRelative {
		t.Fatal("RIPRelative = false, want true")
	}
	dst := ins.Operands[0]
	if dst.Kind != decoder.OperandMemory {
		t.Fatalf("dst.Kind = %v, want OperandMemory", dst.Kind)
	}
	if dst.Memory.Flags&decoder.MemRIPRelative == 0 {
		t.Error("Memory.Flags does not carry MemRIPRelative")
	}
	if dst.Memory.Disp != 0x04030201 {
		t.Errorf("Memory.Disp = %#x, want 0x04030201", dst.Memory.Disp)
	}
}

func TestModRM16BitDirectDisplacement(t *testing.T) {
	ins, err := decoder.Decode([]byte{0x89, 0x06, 0x34, 0x12}, decoder.Mode16Config())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	dst := ins.Operands[0]
	if dst.Kind != decoder.OperandMemory {
		t.Fatalf("dst.Kind = %v, want OperandMemory", dst.Kind)
	}
	if dst.Memory.Base != nil {
		t.Errorf("Memory.Base = %+v, want nil (mod=0,rm=6 is direct disp16)", dst.Memory.Base)
	}
	if !dst.Memory.HasDisp || dst.Memory.Disp != 0x1234 {
		t.Errorf("Memory.Disp = %#x (HasDisp=%v), want 0x1234", dst.Memory.Disp, dst.Memory.HasDisp)
	}
}

func TestModRMSIBWithScale(t *testing.T) {
	ins, err := decoder.Decode([]byte{0x89, 0x44, 0x88, 0x10}, decoder.Mode64Config())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	dst := ins.Operands[0]
	if dst.Kind != decoder.OperandMemory {
		t.Fatalf("dst.Kind = %v, want OperandMemory", dst.Kind)
	}
	mem := dst.Memory
	if mem.Scale != 4 {
		t.Errorf("Memory.Scale = %d, want 4", mem.Scale)
	}
	if mem.Index == nil || mem.Index.Number != 1 {
		t.Fatalf("Memory.Index = %+v, want rcx (number 1)", mem.Index)
	}
	if mem.Base == nil || mem.Base.Number != 0 {
		t.Fatalf("Memory.Base = %+v, want rax (number 0)", mem.Base)
	}
	if mem.Disp != 16 {
		t.Errorf("Memory.Disp = %d, want 16", mem.Disp)
	}
}

func TestModRMRegisterFormSkipsMemory(t *testing.T) {
	ins, err := decoder.Decode([]byte{0x89, 0xD8}, decoder.Mode64Config())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ins.HasSIB {
		t.Error("HasSIB = true for a register-register ModR/M byte")
	}
	if ins.HasDisp {
		t.Error("HasDisp = true for a register-register ModR/M byte")
	}
	if ins.Operands[0].Kind != decoder.OperandRegister {
		t.Errorf("Operands[0].Kind = %v, want OperandRegister", ins.Operands[0].Kind)
	}
}

package decoder_test

import (
	"testing"

	"github.com/keurnel/x86decode/decoder"
)

func TestDecoratorsMaskRegister(t *testing.T) {
	ins, err := decoder.Decode([]byte{0x62, 0xF1, 0x7C, 0x03, 0x10, 0xC1}, decoder.Mode64Config())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ins.Decorators.MaskRegister != 3 {
		t.Errorf("MaskRegister = %d, want 3", ins.Decorators.MaskRegister)
	}
}

func TestDecoratorsZeroingWithMask(t *testing.T) {
	ins, err := decoder.Decode([]byte{0x62, 0xF1, 0x7C, 0x83, 0x10, 0xC1}, decoder.Mode64Config())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !ins.Decorators.Zeroing {
		t.Error("Zeroing = false, want true")
	}
	if ins.Decorators.MaskRegister != 3 {
		t.Errorf("MaskRegister = %d, want 3", ins.Decorators.MaskRegister)
	}
}

func TestDecoratorsZeroingRequiresMask(t *testing.T) {
	_, err := decoder.Decode([]byte{0x62, 0xF1, 0x7C, 0x80, 0x10, 0xC1}, decoder.Mode64Config())
	if !decoder.IsKind(err, decoder.ErrZeroingNoMask) {
		t.Fatalf("err = %v, want ErrZeroingNoMask", err)
	}
}

func TestDecoratorsBroadcast(t *testing.T) {
	ins, err := decoder.Decode([]byte{0x62, 0xF1, 0x7C, 0x10, 0x10, 0x00}, decoder.Mode64Config())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ins.Decorators.BroadcastSize != 4 {
		t.Errorf("BroadcastSize = %d, want 4 (W=0)", ins.Decorators.BroadcastSize)
	}
}

func TestDecoratorsBroadcastWideWithREXW(t *testing.T) {
	// W=1 moves broadcast element size to 8 bytes; byte2 bit7 sets EVEX.W.
	ins, err := decoder.Decode([]byte{0x62, 0xF1, 0xFC, 0x10, 0x10, 0x00}, decoder.Mode64Config())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ins.Decorators.BroadcastSize != 8 {
		t.Errorf("BroadcastSize = %d, want 8 (W=1)", ins.Decorators.BroadcastSize)
	}
}

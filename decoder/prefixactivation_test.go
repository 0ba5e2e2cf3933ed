package decoder_test

import (
	"testing"

	"github.com/keurnel/x86decode/decoder"
)

func TestLockRejectedOnRegisterForm(t *testing.T) {
	// CMPXCHG is lockable, but only against a memory destination; mod==3
	// (register form) must still reject LOCK.
	_, err := decoder.Decode([]byte{0xF0, 0x0F, 0xB1, 0xD8}, decoder.Mode64Config())
	if !decoder.IsKind(err, decoder.ErrBadLockPrefix) {
		t.Fatalf("err = %v, want ErrBadLockPrefix", err)
	}
}

func TestLockAcceptedOnLockableMemoryForm(t *testing.T) {
	ins, err := decoder.Decode([]byte{0xF0, 0x0F, 0xB1, 0x18}, decoder.Mode64Config())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !ins.Prefixes.Lock {
		t.Error("Prefixes.Lock = false, want true")
	}
}

func TestBranchHintSuppressedWhenEntryDoesNotAllowIt(t *testing.T) {
	// mov has no AttrBranchHint: a leading 0x2E is scanned as a hint
	// candidate but must be cleared once the entry is known.
	ins, err := decoder.Decode([]byte{0x2E, 0x89, 0xD8}, decoder.Mode64Config())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ins.Prefixes.Hint != decoder.HintNone {
		t.Errorf("Prefixes.Hint = %v, want HintNone", ins.Prefixes.Hint)
	}
}

func TestBranchHintClearedOnMultiByteNop(t *testing.T) {
	// The multi-byte NOP is not a conditional branch: the leading 0x2E is
	// scanned as a hint candidate but is not activated.
	ins, err := decoder.Decode([]byte{0x2E, 0x0F, 0x1F, 0x00}, decoder.Mode64Config())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ins.Prefixes.Hint != decoder.HintNone {
		t.Errorf("Prefixes.Hint = %v, want HintNone", ins.Prefixes.Hint)
	}
}

package decoder_test

import (
	"testing"

	"github.com/keurnel/x86decode/decoder"
)

func TestDecodeTracedSuccess(t *testing.T) {
	ins, tr, err := decoder.DecodeTraced([]byte{0x48, 0x89, 0xD8}, decoder.Mode64Config())
	if err != nil {
		t.Fatalf("DecodeTraced() error = %v", err)
	}
	if ins.Entry.Mnemonic != "mov" {
		t.Errorf("Mnemonic = %q, want mov", ins.Entry.Mnemonic)
	}
	if tr.Count() == 0 {
		t.Error("expected trace to record at least one entry")
	}
	if tr.HasErrors() {
		t.Error("HasErrors() = true on a successful decode")
	}
}

func TestDecodeTracedFailureStillReturnsTrace(t *testing.T) {
	ins, tr, err := decoder.DecodeTraced([]byte{0xF0, 0x90}, decoder.Mode64Config())
	if err == nil {
		t.Fatal("expected an error for LOCK on a non-lockable instruction")
	}
	if ins != nil {
		t.Errorf("ins = %+v, want nil on failure", ins)
	}
	if !tr.HasErrors() {
		t.Error("HasErrors() = false, want true after a failed decode")
	}
}

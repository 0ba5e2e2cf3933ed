package decoder_test

import (
	"strings"
	"testing"

	"github.com/keurnel/x86decode/decoder"
)

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind decoder.ErrorKind
		want string
	}{
		{decoder.ErrBufferTooSmall, "buffer too small"},
		{decoder.ErrInvalidEncoding, "invalid encoding"},
		{decoder.ErrBadLockPrefix, "LOCK prefix not valid on this instruction"},
		{decoder.ErrorKind(255), "unknown decode error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeErrorFormatting(t *testing.T) {
	_, err := decoder.Decode([]byte{0x48, 0x89}, decoder.Mode64Config())
	if err == nil {
		t.Fatal("Decode() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "buffer too small") {
		t.Errorf("Error() = %q, want it to mention the failure", err.Error())
	}
}

func TestIsKind(t *testing.T) {
	_, err := decoder.Decode([]byte{0x48, 0x89}, decoder.Mode64Config())
	if !decoder.IsKind(err, decoder.ErrBufferTooSmall) {
		t.Error("IsKind(err, ErrBufferTooSmall) = false, want true")
	}
	if decoder.IsKind(err, decoder.ErrInvalidEncoding) {
		t.Error("IsKind(err, ErrInvalidEncoding) = true, want false")
	}
	if decoder.IsKind(nil, decoder.ErrBufferTooSmall) {
		t.Error("IsKind(nil, ...) = true, want false")
	}
}

func TestDecodeErrorIs(t *testing.T) {
	a := &decoder.DecodeError{Kind: decoder.ErrBadLockPrefix, Offset: 0}
	b := &decoder.DecodeError{Kind: decoder.ErrBadLockPrefix, Offset: 3}
	c := &decoder.DecodeError{Kind: decoder.ErrMaskRequired, Offset: 0}

	if !a.Is(b) {
		t.Error("Is() = false for matching kinds at different offsets, want true")
	}
	if a.Is(c) {
		t.Error("Is() = true for mismatched kinds, want false")
	}
}

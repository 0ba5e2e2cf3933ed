package decoder_test

import (
	"testing"

	"github.com/keurnel/x86decode/decoder"
)

func TestRegisterName(t *testing.T) {
	tests := []struct {
		name string
		reg  decoder.RegisterRef
		want string
	}{
		{name: "rax", reg: decoder.RegRAX, want: "rax"},
		{name: "eax", reg: decoder.RegEAX, want: "eax"},
		{name: "r8 64-bit", reg: decoder.RegisterRef{Bank: decoder.BankGPR, Number: 8, Size: 8}, want: "r8"},
		{name: "apx r16 32-bit", reg: decoder.RegisterRef{Bank: decoder.BankGPR, Number: 16, Size: 4}, want: "r16d"},
		{name: "high-8 ah", reg: decoder.RegisterRef{Bank: decoder.BankGPR, Number: 4, Size: 1, High8: true}, want: "ah"},
		{name: "low-8 spl", reg: decoder.RegisterRef{Bank: decoder.BankGPR, Number: 4, Size: 1}, want: "spl"},
		{name: "segment fs", reg: decoder.RegFS, want: "fs"},
		{name: "control cr3", reg: decoder.RegisterRef{Bank: decoder.BankControl, Number: 3}, want: "cr3"},
		{name: "xmm0", reg: decoder.RegisterRef{Bank: decoder.BankVector, Number: 0, Size: 16}, want: "xmm0"},
		{name: "ymm1", reg: decoder.RegisterRef{Bank: decoder.BankVector, Number: 1, Size: 32}, want: "ymm1"},
		{name: "zmm2", reg: decoder.RegisterRef{Bank: decoder.BankVector, Number: 2, Size: 64}, want: "zmm2"},
		{name: "mask k3", reg: decoder.RegisterRef{Bank: decoder.BankMask, Number: 3}, want: "k3"},
		{name: "tile tmm4", reg: decoder.RegisterRef{Bank: decoder.BankTile, Number: 4}, want: "tmm4"},
		{name: "x87 st2", reg: decoder.RegisterRef{Bank: decoder.BankX87, Number: 2}, want: "st(2)"},
		{name: "rip", reg: decoder.RegRIP, want: "rip"},
		{name: "mxcsr", reg: decoder.RegMXCSR, want: "mxcsr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decoder.RegisterName(tt.reg)
			if got != tt.want {
				t.Errorf("RegisterName(%+v) = %q, want %q", tt.reg, got, tt.want)
			}
		})
	}
}

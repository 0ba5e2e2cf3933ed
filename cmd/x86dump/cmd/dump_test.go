package cmd

import (
	"testing"

	"github.com/keurnel/x86decode/decoder"
)

func TestParseHexBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{name: "spaced", input: "48 89 d8", want: []byte{0x48, 0x89, 0xD8}},
		{name: "packed", input: "4889d8", want: []byte{0x48, 0x89, 0xD8}},
		{name: "0x prefix", input: "0x90", want: []byte{0x90}},
		{name: "empty", input: "", wantErr: true},
		{name: "odd length", input: "489", wantErr: true},
		{name: "not hex", input: "zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHexBytes(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseHexBytes(%q) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseHexBytes(%q) error = %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseHexBytes(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseHexBytes(%q)[%d] = %x, want %x", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResolveModeConfig(t *testing.T) {
	tests := []struct {
		name       string
		mode       string
		vendor     string
		wantCode   decoder.CodeMode
		wantVendor decoder.Vendor
		wantErr    bool
	}{
		{name: "64/any", mode: "64", vendor: "any", wantCode: decoder.Mode64, wantVendor: decoder.VendorAny},
		{name: "32/amd", mode: "32", vendor: "amd", wantCode: decoder.Mode32, wantVendor: decoder.VendorAMD},
		{name: "16/intel", mode: "16", vendor: "intel", wantCode: decoder.Mode16, wantVendor: decoder.VendorIntel},
		{name: "bad mode", mode: "8", vendor: "any", wantErr: true},
		{name: "bad vendor", mode: "64", vendor: "cray", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := resolveModeConfig(tt.mode, tt.vendor)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("resolveModeConfig(%q, %q) error = nil, want error", tt.mode, tt.vendor)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveModeConfig(%q, %q) error = %v", tt.mode, tt.vendor, err)
			}
			if cfg.CodeMode != tt.wantCode {
				t.Errorf("CodeMode = %v, want %v", cfg.CodeMode, tt.wantCode)
			}
			if cfg.Vendor != tt.wantVendor {
				t.Errorf("Vendor = %v, want %v", cfg.Vendor, tt.wantVendor)
			}
		})
	}
}

func TestEncodingName(t *testing.T) {
	tests := []struct {
		enc  decoder.EncodingMode
		want string
	}{
		{decoder.EncodingLegacy, "legacy"},
		{decoder.EncodingVEX, "vex"},
		{decoder.EncodingEVEX, "evex"},
		{decoder.EncodingXOP, "xop"},
		{decoder.EncodingREX2, "rex2"},
	}

	for _, tt := range tests {
		got := encodingName(tt.enc)
		if got != tt.want {
			t.Errorf("encodingName(%v) = %q, want %q", tt.enc, got, tt.want)
		}
	}
}

func TestDescribeOperandRegister(t *testing.T) {
	o := decoder.Operand{Kind: decoder.OperandRegister, Register: decoder.RegRAX}
	got := describeOperand(o)
	if got != "rax" {
		t.Errorf("describeOperand(rax) = %q, want rax", got)
	}
}

func TestRunDumpEndToEnd(t *testing.T) {
	buf, err := parseHexBytes("48 89 d8")
	if err != nil {
		t.Fatalf("parseHexBytes error = %v", err)
	}
	mode, err := resolveModeConfig("64", "any")
	if err != nil {
		t.Fatalf("resolveModeConfig error = %v", err)
	}
	ins, err := decoder.Decode(buf, mode)
	if err != nil {
		t.Fatalf("Decode error = %v", err)
	}
	if ins.Entry.Mnemonic != "mov" {
		t.Errorf("Mnemonic = %q, want mov", ins.Entry.Mnemonic)
	}
}

package decoder_test

import (
	"testing"

	"github.com/keurnel/x86decode/decoder"
)

func TestModeConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     decoder.ModeConfig
		wantErr bool
	}{
		{name: "valid 64-bit", cfg: decoder.Mode64Config(), wantErr: false},
		{name: "valid 32-bit", cfg: decoder.Mode32Config(), wantErr: false},
		{name: "valid 16-bit", cfg: decoder.Mode16Config(), wantErr: false},
		{
			name:    "bogus code mode",
			cfg:     decoder.ModeConfig{CodeMode: 8, DataMode: 8, StackMode: 8},
			wantErr: true,
		},
		{
			name:    "64-bit code mode requires 64-bit data mode",
			cfg:     decoder.ModeConfig{CodeMode: decoder.Mode64, DataMode: decoder.Mode32, StackMode: decoder.Mode64},
			wantErr: true,
		},
		{
			name:    "data mode may not exceed code mode",
			cfg:     decoder.ModeConfig{CodeMode: decoder.Mode32, DataMode: decoder.Mode64, StackMode: decoder.Mode32},
			wantErr: true,
		},
		{
			name:    "APX requires 64-bit code mode",
			cfg:     decoder.ModeConfig{CodeMode: decoder.Mode32, DataMode: decoder.Mode32, StackMode: decoder.Mode32, Features: decoder.FeatureAPX},
			wantErr: true,
		},
		{
			name:    "APX with 64-bit mode is fine",
			cfg:     decoder.ModeConfig{CodeMode: decoder.Mode64, DataMode: decoder.Mode64, StackMode: decoder.Mode64, Features: decoder.FeatureAPX},
			wantErr: false,
		},
		{
			name:    "vendor out of range",
			cfg:     decoder.ModeConfig{CodeMode: decoder.Mode64, DataMode: decoder.Mode64, StackMode: decoder.Mode64, Vendor: decoder.Vendor(99)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Validate() error = %v, want nil", err)
			}
			if tt.wantErr && !decoder.IsKind(err, decoder.ErrInvalidParameter) {
				t.Errorf("err = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestFeatureHas(t *testing.T) {
	f := decoder.FeatureAPX | decoder.FeatureCET
	if !f.Has(decoder.FeatureAPX) {
		t.Error("Has(FeatureAPX) = false, want true")
	}
	if f.Has(decoder.FeatureMPX) {
		t.Error("Has(FeatureMPX) = true, want false")
	}
	if !f.Has(decoder.FeatureAPX | decoder.FeatureCET) {
		t.Error("Has(combined) = false, want true")
	}
}

package decodetrace

import "testing"

func TestLocation_Accessors(t *testing.T) {
	loc := At(4, "dispatch")

	if loc.Offset() != 4 {
		t.Errorf("Offset() = %d, want 4", loc.Offset())
	}
	if loc.Stage() != "dispatch" {
		t.Errorf("Stage() = %q, want dispatch", loc.Stage())
	}
}

func TestLocation_String(t *testing.T) {
	loc := At(2, "modrm")
	if loc.String() != "modrm@2" {
		t.Errorf("String() = %q, want modrm@2", loc.String())
	}
}

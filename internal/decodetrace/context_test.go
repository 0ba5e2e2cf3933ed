package decodetrace

import "testing"

func TestNewTrace(t *testing.T) {
	tr := New()
	if tr == nil {
		t.Fatal("expected non-nil Trace")
	}
	if tr.Stage() != "" {
		t.Errorf("Stage() = %q, want empty", tr.Stage())
	}
	if tr.Count() != 0 {
		t.Errorf("Count() = %d, want 0", tr.Count())
	}
}

func TestTrace_Stages(t *testing.T) {
	tr := New()

	tr.SetStage("prefix")
	if tr.Stage() != "prefix" {
		t.Errorf("Stage() = %q, want prefix", tr.Stage())
	}

	tr.SetStage("opcode")
	if tr.Stage() != "opcode" {
		t.Errorf("Stage() = %q, want opcode", tr.Stage())
	}
}

func TestTrace_EntriesInheritStage(t *testing.T) {
	tr := New()

	tr.SetStage("prefix")
	tr.Info(0, "scanning legacy prefixes")

	tr.SetStage("opcode")
	tr.Warn(1, "escape map selected")

	entries := tr.Entries()
	if entries[0].Stage() != "prefix" {
		t.Errorf("entries[0].Stage() = %q, want prefix", entries[0].Stage())
	}
	if entries[1].Stage() != "opcode" {
		t.Errorf("entries[1].Stage() = %q, want opcode", entries[1].Stage())
	}
}

func TestTrace_Recording(t *testing.T) {
	tests := []struct {
		name         string
		record       func(tr *Trace) *Entry
		wantSeverity string
		wantMessage  string
	}{
		{
			name:         "Error",
			record:       func(tr *Trace) *Entry { return tr.Error(3, "invalid encoding") },
			wantSeverity: SeverityError,
			wantMessage:  "invalid encoding",
		},
		{
			name:         "Warn",
			record:       func(tr *Trace) *Entry { return tr.Warn(2, "inert prefix") },
			wantSeverity: SeverityWarn,
			wantMessage:  "inert prefix",
		},
		{
			name:         "Info",
			record:       func(tr *Trace) *Entry { return tr.Info(0, "dispatch matched") },
			wantSeverity: SeverityInfo,
			wantMessage:  "dispatch matched",
		},
		{
			name:         "Step",
			record:       func(tr *Trace) *Entry { return tr.Step(1, "consumed REX byte") },
			wantSeverity: SeverityTrace,
			wantMessage:  "consumed REX byte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			entry := tt.record(tr)
			if entry.Severity() != tt.wantSeverity {
				t.Errorf("Severity() = %q, want %q", entry.Severity(), tt.wantSeverity)
			}
			if entry.Message() != tt.wantMessage {
				t.Errorf("Message() = %q, want %q", entry.Message(), tt.wantMessage)
			}
			if tr.Count() != 1 {
				t.Errorf("Count() = %d, want 1", tr.Count())
			}
		})
	}
}

func TestTrace_WithDetailChaining(t *testing.T) {
	tr := New()
	tr.SetStage("modrm")

	tr.Error(2, "invalid SIB byte").WithDetail("sib=0xFF")

	entries := tr.Entries()
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Detail() != "sib=0xFF" {
		t.Errorf("Detail() = %q, want sib=0xFF", entries[0].Detail())
	}
}

func TestTrace_Querying(t *testing.T) {
	tr := New()
	tr.SetStage("prefix")
	tr.Error(0, "error 1")
	tr.Warn(1, "warn 1")
	tr.Error(2, "error 2")
	tr.Info(3, "info 1")

	t.Run("Entries returns all in order", func(t *testing.T) {
		entries := tr.Entries()
		if len(entries) != 4 {
			t.Fatalf("len(entries) = %d, want 4", len(entries))
		}
		if entries[0].Message() != "error 1" {
			t.Errorf("entries[0].Message() = %q, want error 1", entries[0].Message())
		}
	})

	t.Run("HasErrors reports true when errors exist", func(t *testing.T) {
		if !tr.HasErrors() {
			t.Error("HasErrors() = false, want true")
		}
	})

	t.Run("HasErrors reports false when no errors", func(t *testing.T) {
		clean := New()
		clean.Warn(0, "just a warning")
		if clean.HasErrors() {
			t.Error("HasErrors() = true, want false")
		}
	})

	t.Run("Count returns total entries", func(t *testing.T) {
		if tr.Count() != 4 {
			t.Errorf("Count() = %d, want 4", tr.Count())
		}
	})
}

func TestTrace_EntriesReturnsCopy(t *testing.T) {
	tr := New()
	tr.Error(0, "original")

	entries := tr.Entries()
	entries[0] = nil

	if tr.Entries()[0] == nil {
		t.Error("Entries() must return a copy, not a reference to the internal slice")
	}
}

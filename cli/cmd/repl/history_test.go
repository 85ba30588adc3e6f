package repl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestHistory_AddAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{Line: "1 + 1", Mode: modeEval},
		{Line: "vars", Mode: modeCtrl},
		{Line: "  1 + 1  ", Mode: modeEval},
		{Line: "", Mode: modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q): %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{Line: "vars", Mode: modeCtrl},
		{Line: "1 + 1", Mode: modeEval},
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load(): %v", err)
	}

	for _, hist := range []*History{h, reloaded} {
		if hist.Len() != len(want) {
			t.Fatalf("Len() = %d, want %d", hist.Len(), len(want))
		}

		for i, w := range want {
			got, err := hist.Entry(i)
			if err != nil {
				t.Fatalf("Entry(%d): %v", i, err)
			}

			if got != w {
				t.Errorf("Entry(%d) = %+v, want %+v", i, got, w)
			}
		}
	}
}

func TestHistory_SkipsRepeat(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for range 3 {
		if err := h.Add("help", modeCtrl); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(data); got != "C:help\n" {
		t.Errorf("history file = %q, want %q", got, "C:help\n")
	}
}

func TestHistory_SameLineDifferentMode(t *testing.T) {
	h := NewHistory("")

	_ = h.Add("help", modeCtrl)
	_ = h.Add("help", modeEval)

	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
}

func TestHistory_UnprefixedLinesAreEval(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	if err := os.WriteFile(path, []byte("2 * 3\n\nC:quit\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	first, _ := h.Entry(0)
	if first != (HistoryEntry{Line: "2 * 3", Mode: modeEval}) {
		t.Errorf("Entry(0) = %+v", first)
	}

	second, _ := h.Entry(1)
	if second != (HistoryEntry{Line: "quit", Mode: modeCtrl}) {
		t.Errorf("Entry(1) = %+v", second)
	}
}

func TestHistory_EntryOutOfBounds(t *testing.T) {
	h := NewHistory("")

	for _, i := range []int{-1, 0, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d) error = %v, want ErrOutOfBounds", i, err)
		}
	}
}

package market

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rickgao/orderbook-recorder/internal/model"
)

func testInstruments() Instruments {
	return Instruments{
		"epl-tot-che-2025-11-01-tot": {
			"Yes": "1102",
			"No":  "9250",
		},
		"epl-tot-che-2025-11-01-total-2pt5": {
			"Over":  "9942",
			"Under": "1310",
		},
	}
}

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(testInstruments())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	if r.Len() != 4 {
		t.Errorf("Len() = %d, want 4", r.Len())
	}

	got, ok := r.Lookup("9942")
	if !ok {
		t.Fatal("Lookup(9942) not found")
	}
	want := model.Label{Market: "epl-tot-che-2025-11-01-total-2pt5", Side: "Over"}
	if got != want {
		t.Errorf("Lookup(9942) = %+v, want %+v", got, want)
	}

	id, ok := r.Identifier(want)
	if !ok || id != "9942" {
		t.Errorf("Identifier(%v) = %q, %v; want 9942, true", want, id, ok)
	}
}

func TestRegistry_ResolveIsIdempotent(t *testing.T) {
	r, err := NewRegistry(testInstruments())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	first := r.Resolve("1102")
	second := r.Resolve("1102")
	if first != second {
		t.Errorf("Resolve not stable: %+v vs %+v", first, second)
	}
	if first.Side != "Yes" {
		t.Errorf("Resolve(1102).Side = %q, want Yes", first.Side)
	}
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	r, err := NewRegistry(testInstruments())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	if _, ok := r.Lookup("missing"); ok {
		t.Error("Lookup(missing) should not be found")
	}
	if got := r.Resolve("missing"); got != model.UnknownLabel {
		t.Errorf("Resolve(missing) = %+v, want %+v", got, model.UnknownLabel)
	}
}

func TestRegistry_IdentifiersOrdered(t *testing.T) {
	r, err := NewRegistry(testInstruments())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	want := []string{"9250", "1102", "9942", "1310"} // No < Yes, Over < Under
	got := r.Identifiers()
	if len(got) != len(want) {
		t.Fatalf("Identifiers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Identifiers()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Mutating the copy must not affect the registry.
	got[0] = "tampered"
	if r.Identifiers()[0] != "9250" {
		t.Error("Identifiers() returned internal slice")
	}

	labels := r.Labels()
	if labels[0].Side != "No" || labels[3].Side != "Under" {
		t.Errorf("Labels() = %v", labels)
	}
}

func TestNewRegistry_Errors(t *testing.T) {
	tests := []struct {
		name        string
		instruments Instruments
		wantErr     string
		wantIs      error
	}{
		{
			name:        "empty",
			instruments: Instruments{},
			wantIs:      ErrEmptyRegistry,
		},
		{
			name:        "empty market name",
			instruments: Instruments{" ": {"Yes": "1"}},
			wantErr:     "instrument market name is required",
		},
		{
			name:        "market without sides",
			instruments: Instruments{"m": {}},
			wantErr:     `market "m" has no sides`,
		},
		{
			name:        "empty side",
			instruments: Instruments{"m": {"": "1"}},
			wantErr:     `market "m": side name is required`,
		},
		{
			name:        "empty identifier",
			instruments: Instruments{"m": {"Yes": "  "}},
			wantErr:     `market "m" side "Yes": identifier is required`,
		},
		{
			name:        "duplicate identifier",
			instruments: Instruments{"m": {"Yes": "1", "No": "1"}},
			wantIs:      ErrDuplicateIdentifier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.instruments)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error = %v, want %v", err, tt.wantIs)
			}
			if tt.wantErr != "" && err.Error() != tt.wantErr {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRegistry_Partition(t *testing.T) {
	r, err := NewRegistry(testInstruments())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	tests := []struct {
		n        int
		wantLens []int
	}{
		{n: 0, wantLens: []int{4}},
		{n: 1, wantLens: []int{4}},
		{n: 2, wantLens: []int{2, 2}},
		{n: 3, wantLens: []int{2, 1, 1}},
		{n: 10, wantLens: []int{1, 1, 1, 1}},
	}

	for _, tt := range tests {
		groups := r.Partition(tt.n)
		if len(groups) != len(tt.wantLens) {
			t.Errorf("Partition(%d) returned %d groups, want %d", tt.n, len(groups), len(tt.wantLens))
			continue
		}
		seen := make(map[string]bool)
		for i, g := range groups {
			if len(g) != tt.wantLens[i] {
				t.Errorf("Partition(%d)[%d] len = %d, want %d", tt.n, i, len(g), tt.wantLens[i])
			}
			for _, id := range g {
				seen[id] = true
			}
		}
		if len(seen) != r.Len() {
			t.Errorf("Partition(%d) covers %d ids, want %d", tt.n, len(seen), r.Len())
		}
	}
}

func TestLoadFile(t *testing.T) {
	content := `
instruments:
  epl-tot-che-2025-11-01-btts:
    "Yes": "3975"
    "No": "9732"
`
	path := filepath.Join(t.TempDir(), "instruments.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if got := r.Resolve("9732"); got.Side != "No" {
		t.Errorf("Resolve(9732) = %+v, want side No", got)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

package diagram

import (
	"reflect"
	"testing"

	"github.com/scopemap/scopemap/backend-go/internal/geometry"
)

func TestDocumentRoundTrip(t *testing.T) {
	d := NewSampleDiagram()

	data, err := MarshalJSONDocument(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	loaded, err := UnmarshalJSONDocument(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(Encode(d), Encode(loaded)) {
		t.Error("document changed across a save/load round trip")
	}

	// Identity and associations survive.
	for _, s := range d.Swimlanes() {
		got := loaded.Swimlane(s.ID)
		if got == nil {
			t.Fatalf("swimlane %d missing after load", s.ID)
		}
		if got.Label != s.Label || got.Angle != s.Angle || got.Length != s.Length || got.Color != s.Color {
			t.Errorf("swimlane %d = %+v, want %+v", s.ID, got, s)
		}
	}
	for _, b := range d.Blobs() {
		got := loaded.Blob(b.ID)
		if got == nil {
			t.Fatalf("blob %d missing after load", b.ID)
		}
		if got.StartOutcome != b.StartOutcome || got.EndOutcome != b.EndOutcome {
			t.Errorf("blob %d endpoints = (%d,%d), want (%d,%d)",
				b.ID, got.StartOutcome, got.EndOutcome, b.StartOutcome, b.EndOutcome)
		}
		if len(got.Points) != len(b.Points) {
			t.Errorf("blob %d has %d points, want %d", b.ID, len(got.Points), len(b.Points))
		}
	}
}

func TestDecodeRecomputesPositions(t *testing.T) {
	d := New(geometry.Point{})
	s, _ := d.AddSwimlane("A", 90, DefaultPalette[0], 0)
	o, _ := d.AddOutcome(s.ID, 100, "m")

	loaded, err := Decode(Encode(d))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	got := loaded.Outcome(o.ID)
	want := geometry.PointAtAngleDistance(loaded.Center, 90, 100)
	if got.Position != want {
		t.Errorf("position = %v, want %v (recomputed, not stored)", got.Position, want)
	}
}

func TestDecodeAdvancesAllocator(t *testing.T) {
	d := NewSampleDiagram()
	maxID := int64(0)
	for _, s := range d.Swimlanes() {
		if s.ID > maxID {
			maxID = s.ID
		}
		for _, outcomeID := range s.Outcomes {
			if outcomeID > maxID {
				maxID = outcomeID
			}
		}
	}
	for _, b := range d.Blobs() {
		if b.ID > maxID {
			maxID = b.ID
		}
	}

	loaded, err := Decode(Encode(d))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	s, err := loaded.AddSwimlane("after-load", 45, DefaultPalette[4], 0)
	if err != nil {
		t.Fatalf("AddSwimlane: %v", err)
	}
	if s.ID <= maxID {
		t.Errorf("new id %d collides with loaded ids (max %d)", s.ID, maxID)
	}
}

func TestDecodeRejectsDanglingReferences(t *testing.T) {
	doc := &Document{
		Blobs: []BlobDoc{{
			ID:             7,
			Points:         [][2]float64{{0, 0}, {1, 0}, {1, 1}},
			StartOutcomeID: 99,
		}},
	}
	if _, err := Decode(doc); err == nil {
		t.Error("expected decode failure for blob referencing a missing outcome")
	}
}

func TestColorHexRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Color
	}{
		{"opaque", "#00BCD4", Color{0x00, 0xBC, 0xD4, 0xFF}},
		{"with alpha", "#E91E6350", Color{0xE9, 0x1E, 0x63, 0x50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if err != nil {
				t.Fatalf("ParseColor(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			back, err := ParseColor(got.Hex())
			if err != nil || back != got {
				t.Errorf("hex round trip: %q -> %+v (%v)", got.Hex(), back, err)
			}
		})
	}

	if _, err := ParseColor("not-a-color"); err == nil {
		t.Error("expected error for malformed color")
	}
}

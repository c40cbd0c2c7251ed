package diagram

import (
	"encoding/json"
	"fmt"

	"github.com/scopemap/scopemap/backend-go/internal/geometry"
)

// Document is the persisted form of a diagram. Outcomes are nested under
// their swimlanes; positions are never stored — they are recomputed from
// angle and distance on load.
type Document struct {
	Center    geometry.Point `json:"center"`
	Swimlanes []SwimlaneDoc  `json:"swimlanes"`
	Blobs     []BlobDoc      `json:"blobs"`
}

type SwimlaneDoc struct {
	ID       int64        `json:"id"`
	Label    string       `json:"label"`
	Angle    float64      `json:"angle"`
	Length   float64      `json:"length"`
	Color    Color        `json:"color"`
	Outcomes []OutcomeDoc `json:"outcomes"`
}

type OutcomeDoc struct {
	ID       int64   `json:"id"`
	Label    string  `json:"label"`
	Distance float64 `json:"distance"`
}

type BlobDoc struct {
	ID             int64        `json:"id"`
	Label          string       `json:"label"`
	Color          Color        `json:"color"`
	Points         [][2]float64 `json:"points"`
	StartOutcomeID int64        `json:"startOutcomeId,omitempty"`
	EndOutcomeID   int64        `json:"endOutcomeId,omitempty"`
}

// Encode converts a diagram to its document form.
func Encode(d *Diagram) *Document {
	doc := &Document{
		Center:    d.Center,
		Swimlanes: make([]SwimlaneDoc, 0, len(d.laneOrder)),
		Blobs:     make([]BlobDoc, 0, len(d.blobs)),
	}

	for _, s := range d.Swimlanes() {
		sd := SwimlaneDoc{
			ID:       s.ID,
			Label:    s.Label,
			Angle:    s.Angle,
			Length:   s.Length,
			Color:    s.Color,
			Outcomes: make([]OutcomeDoc, 0, len(s.Outcomes)),
		}
		for _, outcomeID := range s.Outcomes {
			o := d.outcomes[outcomeID]
			sd.Outcomes = append(sd.Outcomes, OutcomeDoc{
				ID:       o.ID,
				Label:    o.Label,
				Distance: o.Distance,
			})
		}
		doc.Swimlanes = append(doc.Swimlanes, sd)
	}

	for _, b := range d.blobs {
		bd := BlobDoc{
			ID:             b.ID,
			Label:          b.Label,
			Color:          b.Color,
			Points:         make([][2]float64, 0, len(b.Points)),
			StartOutcomeID: b.StartOutcome,
			EndOutcomeID:   b.EndOutcome,
		}
		for _, p := range b.Points {
			bd.Points = append(bd.Points, [2]float64{p.X, p.Y})
		}
		doc.Blobs = append(doc.Blobs, bd)
	}

	return doc
}

// Decode reconstructs a diagram from its document form, preserving every
// stored id and validating cross-references. The id allocator ends past
// the maximum loaded id.
func Decode(doc *Document) (*Diagram, error) {
	d := New(doc.Center)

	for _, sd := range doc.Swimlanes {
		s := &Swimlane{
			ID:     sd.ID,
			Label:  sd.Label,
			Angle:  sd.Angle,
			Length: sd.Length,
			Color:  sd.Color,
		}
		if s.Length <= 0 {
			s.Length = DefaultSwimlaneLength
		}
		if err := d.RestoreSwimlane(s, -1); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		for _, od := range sd.Outcomes {
			o := &Outcome{
				ID:         od.ID,
				Label:      od.Label,
				Distance:   od.Distance,
				SwimlaneID: sd.ID,
			}
			if err := d.RestoreOutcome(o, -1); err != nil {
				return nil, fmt.Errorf("decode: %w", err)
			}
		}
	}

	for _, bd := range doc.Blobs {
		b := &ScopeBlob{
			ID:           bd.ID,
			Label:        bd.Label,
			Color:        bd.Color,
			Points:       make([]geometry.Point, 0, len(bd.Points)),
			StartOutcome: bd.StartOutcomeID,
			EndOutcome:   bd.EndOutcomeID,
		}
		for _, p := range bd.Points {
			b.Points = append(b.Points, geometry.Point{X: p[0], Y: p[1]})
		}
		if err := d.RestoreBlob(b, -1); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	}

	return d, nil
}

// Marshal serializes the document.
func (doc *Document) Marshal() ([]byte, error) {
	return json.Marshal(doc)
}

// UnmarshalDocument parses a JSON document without building a diagram.
func UnmarshalDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal diagram document: %w", err)
	}
	return &doc, nil
}

// MarshalJSONDocument serializes a diagram to its JSON document form.
func MarshalJSONDocument(d *Diagram) ([]byte, error) {
	return json.Marshal(Encode(d))
}

// UnmarshalJSONDocument reconstructs a diagram from its JSON document form.
func UnmarshalJSONDocument(data []byte) (*Diagram, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal diagram document: %w", err)
	}
	return Decode(&doc)
}

package bvh

import (
	"strings"
	"testing"

	"github.com/emilianavt/BVHTools/geom"
)

func buildTestDocument() *Document {
	root := &Joint{
		Name:   "Hips",
		Offset: geom.Vector3{X: 0, Y: 0.98, Z: 0},
		Order:  []ChannelKind{Xposition, Yposition, Zposition, Zrotation, Xrotation, Yrotation},
	}
	spine := &Joint{
		Name:   "Spine",
		Offset: geom.Vector3{X: 0, Y: 0.2, Z: 0.01},
		Order:  []ChannelKind{Zrotation, Xrotation, Yrotation},
	}
	root.Children = append(root.Children, spine)

	values := map[*Joint][][]float32{
		root:  {{0, 0.1}, {0.98, 1.0}, {0, -0.1}, {0, 5}, {0, -3}, {0, 12.25}},
		spine: {{10, -170}, {20, 45}, {30, 90}},
	}
	for joint, cols := range values {
		for i, kind := range joint.Order {
			joint.Channels[kind].Enabled = true
			joint.Channels[kind].Values = cols[i]
		}
	}
	return NewDocument(root, 2, 0.008333)
}

func TestWriteRoundTrip(t *testing.T) {
	doc := buildTestDocument()
	var sb strings.Builder
	if err := WriteBVH(doc, &sb, 6); err != nil {
		t.Fatal(err)
	}

	doc2, err := Parse(sb.String())
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, sb.String())
	}
	if doc2.FrameCount != doc.FrameCount {
		t.Errorf("FrameCount = %d", doc2.FrameCount)
	}

	a, b := doc.Joints(), doc2.Joints()
	if len(a) != len(b) {
		t.Fatalf("joints = %d, want %d", len(b), len(a))
	}
	const eps = 0.000002 // 6-decimal fixed point
	for i := range a {
		if a[i].Name != b[i].Name {
			t.Errorf("joint %d name = %s, want %s", i, b[i].Name, a[i].Name)
		}
		if b[i].Offset.Sub(&a[i].Offset).Len() > eps {
			t.Errorf("joint %s offset = %v, want %v", a[i].Name, b[i].Offset, a[i].Offset)
		}
		if len(a[i].Order) != len(b[i].Order) {
			t.Fatalf("joint %s channels = %v, want %v", a[i].Name, b[i].Order, a[i].Order)
		}
		for ci, kind := range a[i].Order {
			if b[i].Order[ci] != kind {
				t.Errorf("joint %s order[%d] = %v, want %v", a[i].Name, ci, b[i].Order[ci], kind)
			}
			for f := 0; f < doc.FrameCount; f++ {
				got := b[i].Channels[kind].Values[f]
				want := a[i].Channels[kind].Values[f]
				if got-want > eps || want-got > eps {
					t.Errorf("joint %s %v frame %d = %v, want %v", a[i].Name, kind, f, got, want)
				}
			}
		}
	}
}

func TestWriteSyntheticEndSite(t *testing.T) {
	doc := buildTestDocument()
	var sb strings.Builder
	if err := WriteBVH(doc, &sb, 2); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	if !strings.Contains(out, "End Site") {
		t.Fatal("leaf joint has no End Site")
	}
	if strings.Contains(out, "OFFSET\t0.00\t0.00\t0.00\n\t\t}") {
		t.Error("End Site offset is degenerate")
	}

	// A childless, zero-offset root still gets a non-degenerate leaf.
	root := &Joint{Name: "Only", Order: []ChannelKind{Zrotation, Xrotation, Yrotation}}
	for _, kind := range root.Order {
		root.Channels[kind].Enabled = true
		root.Channels[kind].Values = []float32{0}
	}
	sb.Reset()
	if err := WriteBVH(NewDocument(root, 1, 0.04), &sb, 2); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), "OFFSET\t0.00\t1.00\t0.00") {
		t.Errorf("fallback End Site offset missing:\n%s", sb.String())
	}
}

func TestWritePrecision(t *testing.T) {
	doc := buildTestDocument()
	var sb strings.Builder
	if err := WriteBVH(doc, &sb, 2); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), "0.98") || strings.Contains(sb.String(), "0.980000") {
		t.Errorf("2-decimal output wrong:\n%s", sb.String())
	}
	if err := WriteBVH(doc, &sb, 3); err == nil {
		t.Error("precision 3 accepted")
	}
}

func TestWritePreconditions(t *testing.T) {
	if err := WriteBVH(nil, &strings.Builder{}, 6); err == nil {
		t.Error("nil document accepted")
	}

	doc := buildTestDocument()
	doc.FrameCount = 5 // channel arrays still hold 2 values
	if err := WriteBVH(doc, &strings.Builder{}, 6); err == nil {
		t.Error("frame count mismatch accepted")
	}

	empty := NewDocument(&Joint{Name: "A", Order: []ChannelKind{Xrotation, Yrotation, Zrotation}}, 0, 0.04)
	if err := WriteBVH(empty, &strings.Builder{}, 6); err == nil {
		t.Error("zero-frame document accepted")
	}
}

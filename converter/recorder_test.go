package converter

import (
	"strings"
	"testing"

	"github.com/emilianavt/BVHTools/bvh"
	"github.com/emilianavt/BVHTools/geom"
	"github.com/emilianavt/BVHTools/rig"
)

func buildTestRig() *rig.Node {
	hips := rig.NewNode("Hips", geom.Vector3{Y: 1})
	spine := hips.AddChild(rig.NewNode("Spine", geom.Vector3{Y: 0.3}))
	spine.AddChild(rig.NewNode("Head", geom.Vector3{Y: 0.4}))
	return hips
}

func TestRecorderDocument(t *testing.T) {
	root := buildTestRig()
	rec, err := NewRecorder(root, Standard, 1.0/30)
	if err != nil {
		t.Fatal(err)
	}

	root.Position = geom.Vector3{X: 1, Y: 2, Z: 3}
	root.Children[0].Rotation = *angleAxisDeg(30, 0, 0, 1)
	rec.CaptureFrame()
	root.Position = geom.Vector3{X: 2, Y: 2, Z: 3}
	root.Children[0].Rotation = *angleAxisDeg(60, 0, 0, 1)
	rec.CaptureFrame()

	doc, err := rec.Document()
	if err != nil {
		t.Fatal(err)
	}
	if doc.FrameCount != 2 {
		t.Fatalf("frame count = %d", doc.FrameCount)
	}
	joints := doc.Joints()
	if len(joints) != 3 {
		t.Fatalf("joints = %d", len(joints))
	}
	if got := len(joints[0].Order); got != 6 {
		t.Errorf("root channels = %d", got)
	}
	if got := len(joints[1].Order); got != 3 {
		t.Errorf("spine channels = %d", got)
	}

	// Standard convention flips X for positions.
	if got := joints[0].Channels[bvh.Xposition].Values[0]; got != -1 {
		t.Errorf("frame 0 Xposition = %v", got)
	}
	if got := joints[0].Channels[bvh.Xposition].Values[1]; got != -2 {
		t.Errorf("frame 1 Xposition = %v", got)
	}
	if got := joints[1].Channels[bvh.Zrotation].Values[1]; geom.Abs(got-60) > 0.001 {
		t.Errorf("spine Zrotation frame 1 = %v", got)
	}
	if got := joints[0].Offset; got != (geom.Vector3{Y: 1}) {
		t.Errorf("root offset = %v", got)
	}
}

func TestRecorderScaleCompensation(t *testing.T) {
	root := buildTestRig()
	spine := root.Children[0]
	spine.Scale = geom.Vector3{X: 2, Y: 2, Z: 2}

	rec, err := NewRecorder(root, Standard, 1.0/60)
	if err != nil {
		t.Fatal(err)
	}
	rec.CaptureFrame()
	doc, err := rec.Document()
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Joints()[1].Offset.Y; got != 0.15 {
		t.Errorf("scaled offset = %v, want 0.15", got)
	}
}

// A uniformly resized rig writes the same file as the original one:
// offsets and root positions divide back into file space.
func TestRecorderScaledRig(t *testing.T) {
	root := buildTestRig()
	root.ApplyScale(2)
	root.Position = geom.Vector3{X: 2, Y: 4, Z: 6}

	rec, err := NewRecorder(root, Standard, 1.0/60)
	if err != nil {
		t.Fatal(err)
	}
	rec.CaptureFrame()
	doc, err := rec.Document()
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Joints()[1].Offset.Y; got != 0.3 {
		t.Errorf("spine offset = %v, want 0.3", got)
	}
	hips := doc.Joints()[0]
	if got := hips.Channels[bvh.Xposition].Values[0]; got != -1 {
		t.Errorf("Xposition = %v, want -1", got)
	}
	if got := hips.Channels[bvh.Yposition].Values[0]; got != 2 {
		t.Errorf("Yposition = %v, want 2", got)
	}
}

// A captured pose written out and parsed back must reproduce the
// captured rotations up to quaternion sign.
func TestRecorderRoundTrip(t *testing.T) {
	for _, conv := range []Convention{Standard, Blender} {
		root := buildTestRig()
		rec, err := NewRecorder(root, conv, 1.0/30)
		if err != nil {
			t.Fatal(err)
		}

		want := angleAxisDeg(60, 0, 0, 1).Mul(angleAxisDeg(40, 1, 0, 0))
		root.Children[0].Rotation = *want
		root.Position = geom.Vector3{X: 0.5, Y: 1.5, Z: -0.5}
		rec.CaptureFrame()

		doc, err := rec.Document()
		if err != nil {
			t.Fatal(err)
		}
		var sb strings.Builder
		if err := bvh.WriteBVH(doc, &sb, 6); err != nil {
			t.Fatal(err)
		}
		parsed, err := bvh.Parse(sb.String())
		if err != nil {
			t.Fatal(err)
		}

		spine := parsed.Joints()[1]
		got := FromEulerZXY(
			spine.Channels[bvh.Zrotation].Values[0],
			spine.Channels[bvh.Xrotation].Values[0],
			spine.Channels[bvh.Yrotation].Values[0],
			conv,
		)
		if !quatEqualUpToSign(want, got, 0.001) {
			t.Errorf("%v: rotation = %v, want %v", conv, got, want)
		}

		hips := parsed.Joints()[0]
		pos := FromPosition(&geom.Vector3{
			X: hips.Channels[bvh.Xposition].Values[0],
			Y: hips.Channels[bvh.Yposition].Values[0],
			Z: hips.Channels[bvh.Zposition].Values[0],
		}, conv)
		if geom.Abs(pos.X-0.5) > 0.001 || geom.Abs(pos.Y-1.5) > 0.001 || geom.Abs(pos.Z+0.5) > 0.001 {
			t.Errorf("%v: position = %v", conv, pos)
		}
	}
}

func TestRecorderPreconditions(t *testing.T) {
	if _, err := NewRecorder(nil, Standard, 1.0/30); err == nil {
		t.Error("nil root accepted")
	}
	if _, err := NewRecorder(buildTestRig(), Standard, 0); err == nil {
		t.Error("zero frame time accepted")
	}

	rec, err := NewRecorder(buildTestRig(), Standard, 1.0/30)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rec.Document(); err == nil {
		t.Error("empty recording accepted")
	}
}

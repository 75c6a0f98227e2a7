package converter

import (
	"fmt"

	"github.com/emilianavt/BVHTools/bvh"
	"github.com/emilianavt/BVHTools/geom"
	"github.com/emilianavt/BVHTools/rig"
)

// Recorder captures rig poses frame by frame and assembles them into a
// BVH document. CaptureFrame only snapshots transforms; the Euler
// decomposition and axis remapping happen in Document, so capturing is
// cheap enough for an engine update loop.
type Recorder struct {
	Root       *rig.Node
	Convention Convention
	FrameTime  float64

	nodes  []*rig.Node
	frames []frame
}

// frame is one captured pose: the root translation plus the local
// rotation of every node, in the recorder's pre-order.
type frame struct {
	rootPos   geom.Vector3
	rotations []geom.Quaternion
}

func NewRecorder(root *rig.Node, conv Convention, frameTime float64) (*Recorder, error) {
	if root == nil {
		return nil, fmt.Errorf("converter: recorder needs a root node")
	}
	if frameTime <= 0 {
		return nil, fmt.Errorf("converter: invalid frame time %v", frameTime)
	}
	r := &Recorder{Root: root, Convention: conv, FrameTime: frameTime}
	root.Walk(func(n *rig.Node) { r.nodes = append(r.nodes, n) })
	return r, nil
}

func (r *Recorder) FrameCount() int {
	return len(r.frames)
}

// CaptureFrame snapshots the current local transforms of every node.
// The rig may move on after this returns; captured values never alias
// live node state.
func (r *Recorder) CaptureFrame() {
	f := frame{
		rootPos:   r.Root.Position,
		rotations: make([]geom.Quaternion, len(r.nodes)),
	}
	for i, n := range r.nodes {
		f.rotations[i] = n.Rotation
	}
	r.frames = append(r.frames, f)
}

// Document converts the captured frames into a BVH document. The root
// joint carries position and rotation channels; every other joint
// carries Zrotation Xrotation Yrotation.
func (r *Recorder) Document() (*bvh.Document, error) {
	if len(r.frames) == 0 {
		return nil, fmt.Errorf("converter: no frames captured")
	}

	joints := make([]*bvh.Joint, len(r.nodes))
	index := make(map[*rig.Node]int, len(r.nodes))
	for i, n := range r.nodes {
		index[n] = i
		joint := &bvh.Joint{
			Name:   n.Name,
			Offset: *ToPosition(CompensateScale(&n.RestOffset, &n.Scale), r.Convention),
		}
		if i == 0 {
			joint.Order = []bvh.ChannelKind{
				bvh.Xposition, bvh.Yposition, bvh.Zposition,
				bvh.Zrotation, bvh.Xrotation, bvh.Yrotation,
			}
		} else {
			joint.Order = []bvh.ChannelKind{bvh.Zrotation, bvh.Xrotation, bvh.Yrotation}
		}
		for _, kind := range joint.Order {
			joint.Channels[kind] = bvh.Channel{
				Enabled: true,
				Values:  make([]float32, len(r.frames)),
			}
		}
		joints[i] = joint
	}
	for i, n := range r.nodes {
		if n.Parent != nil {
			parent := joints[index[n.Parent]]
			parent.Children = append(parent.Children, joints[i])
		}
	}

	root := joints[0]
	for fi := range r.frames {
		f := &r.frames[fi]
		pos := ToPosition(CompensateScale(&f.rootPos, &r.Root.Scale), r.Convention)
		root.Channels[bvh.Xposition].Values[fi] = pos.X
		root.Channels[bvh.Yposition].Values[fi] = pos.Y
		root.Channels[bvh.Zposition].Values[fi] = pos.Z
		for i, joint := range joints {
			z, x, y := ToEulerZXY(&f.rotations[i], r.Convention)
			joint.Channels[bvh.Zrotation].Values[fi] = z
			joint.Channels[bvh.Xrotation].Values[fi] = x
			joint.Channels[bvh.Yrotation].Values[fi] = y
		}
	}
	return bvh.NewDocument(root, len(r.frames), r.FrameTime), nil
}

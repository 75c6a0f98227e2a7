package converter

import (
	"fmt"

	"github.com/emilianavt/BVHTools/bvh"
	"github.com/emilianavt/BVHTools/geom"
	"github.com/emilianavt/BVHTools/rig"
)

// Curve property names passed to CurveConsumer.AddCurve.
const (
	PropPositionX = "position.x"
	PropPositionY = "position.y"
	PropPositionZ = "position.z"
	PropRotationX = "rotation.x"
	PropRotationY = "rotation.y"
	PropRotationZ = "rotation.z"
	PropRotationW = "rotation.w"
)

// CurveConsumer receives decoded animation curves. Times are seconds
// from the start of the clip, one entry per frame; values holds the
// component named by property at the same index. Quaternion components
// arrive as four separate curves and may flip sign between frames;
// consumers that interpolate must enforce sign continuity themselves.
type CurveConsumer interface {
	AddCurve(node *rig.Node, property string, times, values []float32)
}

// Decode converts a parsed document into engine-space curves on the
// given rig. Every joint must resolve to a rig node; a miss aborts the
// decode since the remaining hierarchy would map incorrectly. Joints
// with a full position or rotation channel set produce curves; partial
// sets (1-2 of 3) are skipped.
func Decode(doc *bvh.Document, root *rig.Node, resolver *rig.Resolver, conv Convention, consumer CurveConsumer) error {
	if doc == nil || doc.Root == nil {
		return fmt.Errorf("converter: no document to decode")
	}
	if root == nil {
		return fmt.Errorf("converter: decode needs a rig root")
	}
	if consumer == nil {
		return fmt.Errorf("converter: decode needs a consumer")
	}

	times := make([]float32, doc.FrameCount)
	for f := range times {
		times[f] = float32(float64(f) * doc.FrameTime)
	}

	for _, joint := range doc.Joints() {
		node, err := resolver.Resolve(root, joint.Name)
		if err != nil {
			return err
		}
		if hasFullSet(joint, bvh.Xposition, bvh.Yposition, bvh.Zposition) {
			decodePosition(joint, node, times, conv, consumer)
		}
		if hasFullSet(joint, bvh.Xrotation, bvh.Yrotation, bvh.Zrotation) {
			decodeRotation(joint, node, times, conv, consumer)
		}
	}
	return nil
}

func hasFullSet(joint *bvh.Joint, kinds ...bvh.ChannelKind) bool {
	for _, k := range kinds {
		if !joint.Channels[k].Enabled {
			return false
		}
	}
	return true
}

func decodePosition(joint *bvh.Joint, node *rig.Node, times []float32, conv Convention, consumer CurveConsumer) {
	xs := make([]float32, len(times))
	ys := make([]float32, len(times))
	zs := make([]float32, len(times))
	for f := range times {
		// Scale back up into the node's local space; the inverse of the
		// compensation applied when recording.
		v := FromPosition(&geom.Vector3{
			X: joint.Channels[bvh.Xposition].Values[f],
			Y: joint.Channels[bvh.Yposition].Values[f],
			Z: joint.Channels[bvh.Zposition].Values[f],
		}, conv).ScaleElem(&node.Scale)
		xs[f], ys[f], zs[f] = v.X, v.Y, v.Z
	}
	consumer.AddCurve(node, PropPositionX, times, xs)
	consumer.AddCurve(node, PropPositionY, times, ys)
	consumer.AddCurve(node, PropPositionZ, times, zs)
}

func decodeRotation(joint *bvh.Joint, node *rig.Node, times []float32, conv Convention, consumer CurveConsumer) {
	xs := make([]float32, len(times))
	ys := make([]float32, len(times))
	zs := make([]float32, len(times))
	ws := make([]float32, len(times))
	for f := range times {
		q := FromEulerZXY(
			WrapDeg(joint.Channels[bvh.Zrotation].Values[f]),
			WrapDeg(joint.Channels[bvh.Xrotation].Values[f]),
			WrapDeg(joint.Channels[bvh.Yrotation].Values[f]),
			conv,
		)
		xs[f], ys[f], zs[f], ws[f] = q.X, q.Y, q.Z, q.W
	}
	consumer.AddCurve(node, PropRotationX, times, xs)
	consumer.AddCurve(node, PropRotationY, times, ys)
	consumer.AddCurve(node, PropRotationZ, times, zs)
	consumer.AddCurve(node, PropRotationW, times, ws)
}

// SkeletonFromDocument builds rig stand-ins mirroring the document's
// joint hierarchy, with rest offsets converted back to engine space.
// Useful when no target rig exists, e.g. for standalone export.
func SkeletonFromDocument(doc *bvh.Document, conv Convention) (*rig.Node, error) {
	if doc == nil || doc.Root == nil {
		return nil, fmt.Errorf("converter: no document")
	}
	var build func(j *bvh.Joint) *rig.Node
	build = func(j *bvh.Joint) *rig.Node {
		n := rig.NewNode(j.Name, *FromPosition(&j.Offset, conv))
		for _, c := range j.Children {
			n.AddChild(build(c))
		}
		return n
	}
	return build(doc.Root), nil
}

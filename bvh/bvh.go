package bvh

import (
	"github.com/emilianavt/BVHTools/geom"
)

// ChannelKind identifies one animated degree of freedom of a joint.
// Rotation kinds are the position kinds offset by 3.
type ChannelKind int

const (
	Xposition ChannelKind = iota
	Yposition
	Zposition
	Xrotation
	Yrotation
	Zrotation

	channelKinds = 6
)

var channelNames = [channelKinds]string{
	"Xposition", "Yposition", "Zposition",
	"Xrotation", "Yrotation", "Zrotation",
}

func (k ChannelKind) String() string {
	if k < 0 || k >= channelKinds {
		return "Unknown"
	}
	return channelNames[k]
}

// Channel holds the per-frame values of one degree of freedom.
// A disabled channel has no values at all.
type Channel struct {
	Enabled bool
	Values  []float32
}

// Joint is a named node of the skeleton with a rest offset and a
// declared channel set. Channels is indexed by ChannelKind; Order
// preserves the declaration order from the file, which also defines
// the joint's column order in the motion section.
type Joint struct {
	Name     string
	Offset   geom.Vector3
	Channels [channelKinds]Channel
	Order    []ChannelKind
	Children []*Joint
}

// ChannelCount returns the number of declared channels.
func (j *Joint) ChannelCount() int {
	return len(j.Order)
}

// Document is a parsed BVH file. It is immutable once constructed and
// safe for concurrent read-only use.
type Document struct {
	Root       *Joint
	FrameCount int
	FrameTime  float64

	joints []*Joint
}

// NewDocument derives the flat pre-order joint list from root.
func NewDocument(root *Joint, frameCount int, frameTime float64) *Document {
	doc := &Document{Root: root, FrameCount: frameCount, FrameTime: frameTime}
	var walk func(j *Joint)
	walk = func(j *Joint) {
		doc.joints = append(doc.joints, j)
		for _, c := range j.Children {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return doc
}

// Joints returns every joint in pre-order, root first.
func (d *Document) Joints() []*Joint {
	return d.joints
}

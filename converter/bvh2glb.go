package converter

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/emilianavt/BVHTools/rig"
)

// GlbConsumer collects decoded curves and turns them into one glTF
// animation. Build it over a rig, feed it to Decode, then Flush and
// save the document.
type GlbConsumer struct {
	Document *gltf.Document
	Name     string

	nodeIndex map[*rig.Node]uint32
	order     []*rig.Node
	tracks    map[*rig.Node]*track
}

type track struct {
	times map[string][]float32
	comps map[string][]float32
}

// NewGlbConsumer builds the glTF node hierarchy mirroring the rig.
// Node translations are the engine-space rest offsets; glTF shares the
// engine's right-handed Y-up space, so no further remapping is needed.
func NewGlbConsumer(root *rig.Node, name string) *GlbConsumer {
	c := &GlbConsumer{
		Document:  gltf.NewDocument(),
		Name:      name,
		nodeIndex: map[*rig.Node]uint32{},
		tracks:    map[*rig.Node]*track{},
	}
	root.Walk(func(n *rig.Node) {
		c.nodeIndex[n] = uint32(len(c.Document.Nodes))
		c.Document.Nodes = append(c.Document.Nodes, &gltf.Node{
			Name:        n.Name,
			Translation: [3]float32{n.RestOffset.X, n.RestOffset.Y, n.RestOffset.Z},
			Rotation:    [4]float32{0, 0, 0, 1},
		})
	})
	root.Walk(func(n *rig.Node) {
		if n.Parent == nil {
			c.Document.Scenes[0].Nodes = append(c.Document.Scenes[0].Nodes, c.nodeIndex[n])
			return
		}
		parent := c.Document.Nodes[c.nodeIndex[n.Parent]]
		parent.Children = append(parent.Children, c.nodeIndex[n])
	})
	return c
}

// AddCurve implements CurveConsumer.
func (c *GlbConsumer) AddCurve(node *rig.Node, property string, times, values []float32) {
	tr := c.tracks[node]
	if tr == nil {
		tr = &track{times: map[string][]float32{}, comps: map[string][]float32{}}
		c.tracks[node] = tr
		c.order = append(c.order, node)
	}
	tr.times[property] = times
	tr.comps[property] = values
}

// Flush assembles the accumulated curves into an animation and appends
// it to the document. The consumer can be reused for another clip
// afterwards.
func (c *GlbConsumer) Flush() error {
	a := gltf.Animation{Name: c.Name}

	for _, node := range c.order {
		ni, ok := c.nodeIndex[node]
		if !ok {
			return fmt.Errorf("converter: node %s is not part of the exported rig", node.Name)
		}
		tr := c.tracks[node]

		if rotations, times, ok := tr.rotationSamples(); ok {
			keysAcc := modeler.WriteAccessor(c.Document, gltf.TargetArrayBuffer, times)
			samplesAcc := modeler.WriteTangent(c.Document, rotations)
			a.Samplers = append(a.Samplers, &gltf.AnimationSampler{
				Input:         gltf.Index(uint32(keysAcc)),
				Output:        gltf.Index(uint32(samplesAcc)),
				Interpolation: gltf.InterpolationLinear,
			})
			a.Channels = append(a.Channels, &gltf.Channel{
				Sampler: gltf.Index(uint32(len(a.Samplers) - 1)),
				Target: gltf.ChannelTarget{
					Node: gltf.Index(ni),
					Path: gltf.TRSRotation,
				},
			})
		}

		if translations, times, ok := tr.positionSamples(); ok {
			keysAcc := modeler.WriteAccessor(c.Document, gltf.TargetArrayBuffer, times)
			samplesAcc := modeler.WritePosition(c.Document, translations)
			a.Samplers = append(a.Samplers, &gltf.AnimationSampler{
				Input:         gltf.Index(uint32(keysAcc)),
				Output:        gltf.Index(uint32(samplesAcc)),
				Interpolation: gltf.InterpolationLinear,
			})
			a.Channels = append(a.Channels, &gltf.Channel{
				Sampler: gltf.Index(uint32(len(a.Samplers) - 1)),
				Target: gltf.ChannelTarget{
					Node: gltf.Index(ni),
					Path: gltf.TRSTranslation,
				},
			})
		}
	}

	if len(a.Channels) == 0 {
		return fmt.Errorf("converter: no curves to export")
	}
	c.Document.Animations = append(c.Document.Animations, &a)
	c.tracks = map[*rig.Node]*track{}
	c.order = nil
	return nil
}

// Save flushes and writes the document as a binary glTF file.
func (c *GlbConsumer) Save(path string) error {
	if err := c.Flush(); err != nil {
		return err
	}
	return gltf.SaveBinary(c.Document, path)
}

// rotationSamples assembles the four rotation component curves into
// quaternion samples. Per-frame sign flips from the Euler decode are
// removed here so the linear interpolation takes the short way around.
func (t *track) rotationSamples() ([][4]float32, []float32, bool) {
	xs, ys, zs, ws := t.comps[PropRotationX], t.comps[PropRotationY], t.comps[PropRotationZ], t.comps[PropRotationW]
	if xs == nil || ys == nil || zs == nil || ws == nil {
		return nil, nil, false
	}
	samples := make([][4]float32, len(ws))
	for i := range samples {
		q := [4]float32{xs[i], ys[i], zs[i], ws[i]}
		if i > 0 {
			p := samples[i-1]
			if p[0]*q[0]+p[1]*q[1]+p[2]*q[2]+p[3]*q[3] < 0 {
				q = [4]float32{-q[0], -q[1], -q[2], -q[3]}
			}
		}
		samples[i] = q
	}
	return samples, t.times[PropRotationW], true
}

func (t *track) positionSamples() ([][3]float32, []float32, bool) {
	xs, ys, zs := t.comps[PropPositionX], t.comps[PropPositionY], t.comps[PropPositionZ]
	if xs == nil || ys == nil || zs == nil {
		return nil, nil, false
	}
	samples := make([][3]float32, len(xs))
	for i := range samples {
		samples[i] = [3]float32{xs[i], ys[i], zs[i]}
	}
	return samples, t.times[PropPositionX], true
}

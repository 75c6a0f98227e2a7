package bvh

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/emilianavt/BVHTools/geom"
)

// Parser for BVH files. A single synchronous pass over an in-memory
// buffer; the resulting Document never references the parser.
type Parser struct {
	s scanner

	// OverrideFrameTime replaces the file's Frame Time value when > 0,
	// e.g. to force a known capture rate.
	OverrideFrameTime float64
}

// NewParser returns new parser.
func NewParser(text string) *Parser {
	return &Parser{s: scanner{buf: text}}
}

// Parse reads a complete document from text.
func Parse(text string) (*Document, error) {
	return NewParser(text).Parse()
}

// Load reads and parses a BVH file. Files that are not valid UTF-8 are
// assumed to be Shift_JIS (common for Japanese mocap tools).
func Load(path string) (*Document, error) {
	return new(Parser).Load(path)
}

// Load reads the file into the parser's buffer and parses it, honoring
// the parser's settings such as OverrideFrameTime.
func (p *Parser) Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		data, _, err = transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
		if err != nil {
			return nil, err
		}
	}
	p.s = scanner{buf: string(data)}
	return p.Parse()
}

func (p *Parser) Parse() (*Document, error) {
	p.s.skipWhitespace()
	if !p.s.expectLiteral("HIERARCHY") {
		return nil, p.s.parseError("HIERARCHY")
	}
	p.s.skipWhitespace()
	if !p.s.expectLiteral("ROOT") {
		return nil, p.s.parseError("ROOT")
	}
	root, err := p.parseJoint()
	if err != nil {
		return nil, err
	}

	frameCount, frameTime, err := p.parseMotionHeader()
	if err != nil {
		return nil, err
	}
	if p.OverrideFrameTime > 0 {
		frameTime = p.OverrideFrameTime
	}

	doc := NewDocument(root, frameCount, frameTime)
	if err := p.parseFrames(doc); err != nil {
		return nil, err
	}

	p.s.skipWhitespace()
	if _, ok := p.s.peek(); ok {
		return nil, p.s.parseError(fmt.Sprintf("end of file after %d frames", frameCount))
	}
	return doc, nil
}

// parseJoint consumes `name { OFFSET f f f CHANNELS n ch{n} ... }`,
// recursing into child JOINT blocks. End Site blocks are consumed and
// discarded. The keyword (ROOT or JOINT) is already consumed.
func (p *Parser) parseJoint() (*Joint, error) {
	p.s.skipInlineWhitespace()
	name, ok := p.s.readLineString()
	if !ok {
		return nil, p.s.parseError("joint name")
	}
	joint := &Joint{Name: name}

	p.s.skipWhitespace()
	if !p.s.expectLiteral("{") {
		return nil, p.s.parseError("{")
	}
	p.s.skipWhitespace()
	if !p.s.expectLiteral("OFFSET") {
		return nil, p.s.parseError("OFFSET")
	}
	offset, err := p.readVector3()
	if err != nil {
		return nil, err
	}
	joint.Offset = offset

	p.s.skipWhitespace()
	if !p.s.expectLiteral("CHANNELS") {
		return nil, p.s.parseError("CHANNELS")
	}
	p.s.skipInlineWhitespace()
	n, ok := p.s.readInt()
	if !ok {
		return nil, p.s.numericError("channel count")
	}
	if n < 1 || n > channelKinds {
		return nil, p.s.parseError("channel count between 1 and 6")
	}
	for i := 0; i < n; i++ {
		p.s.skipInlineWhitespace()
		kind, ok := p.s.readChannelToken()
		if !ok {
			return nil, p.s.parseError("channel name (e.g. Xposition)")
		}
		if joint.Channels[kind].Enabled {
			return nil, p.s.parseError(fmt.Sprintf("distinct channel (%v declared twice)", kind))
		}
		joint.Channels[kind].Enabled = true
		joint.Order = append(joint.Order, kind)
	}

	for {
		p.s.skipWhitespace()
		c, ok := p.s.peek()
		if !ok {
			return nil, p.s.parseError("} or child joint")
		}
		switch foldChar(c) {
		case 'J':
			if !p.s.expectLiteral("JOINT") {
				return nil, p.s.parseError("JOINT")
			}
			child, err := p.parseJoint()
			if err != nil {
				return nil, err
			}
			joint.Children = append(joint.Children, child)
		case 'E':
			if err := p.parseEndSite(); err != nil {
				return nil, err
			}
		case '}':
			p.s.pos++
			return joint, nil
		default:
			return nil, p.s.parseError("child joint")
		}
	}
}

// parseEndSite consumes `End Site { OFFSET f f f }`. The offset gives
// the leaf bone a length but contributes no joint node.
func (p *Parser) parseEndSite() error {
	if !p.s.expectLiteral("End Site") {
		return p.s.parseError("End Site")
	}
	p.s.skipWhitespace()
	if !p.s.expectLiteral("{") {
		return p.s.parseError("{")
	}
	p.s.skipWhitespace()
	if !p.s.expectLiteral("OFFSET") {
		return p.s.parseError("OFFSET")
	}
	if _, err := p.readVector3(); err != nil {
		return err
	}
	p.s.skipWhitespace()
	if !p.s.expectLiteral("}") {
		return p.s.parseError("}")
	}
	return nil
}

func (p *Parser) readVector3() (geom.Vector3, error) {
	var v [3]float64
	for i := range v {
		p.s.skipInlineWhitespace()
		f, ok := p.s.readFloat()
		if !ok {
			return geom.Vector3{}, p.s.numericError("float value")
		}
		v[i] = f
	}
	return geom.Vector3{X: float32(v[0]), Y: float32(v[1]), Z: float32(v[2])}, nil
}

func (p *Parser) parseMotionHeader() (int, float64, error) {
	p.s.skipWhitespace()
	if !p.s.expectLiteral("MOTION") {
		return 0, 0, p.s.parseError("MOTION")
	}
	p.s.skipWhitespace()
	if !p.s.expectLiteral("Frames:") {
		return 0, 0, p.s.parseError("Frames:")
	}
	p.s.skipInlineWhitespace()
	frames, ok := p.s.readInt()
	if !ok || frames < 0 {
		return 0, 0, p.s.numericError("frame count")
	}
	p.s.skipWhitespace()
	if !p.s.expectLiteral("Frame Time:") {
		return 0, 0, p.s.parseError("Frame Time:")
	}
	p.s.skipInlineWhitespace()
	frameTime, ok := p.s.readFloat()
	if !ok {
		return 0, 0, p.s.numericError("frame time")
	}
	return frames, frameTime, nil
}

// parseFrames reads the dense value grid: one line per frame, one
// column per enabled channel in flat pre-order joint order and
// per-joint declaration order.
func (p *Parser) parseFrames(doc *Document) error {
	joints := doc.Joints()
	for _, joint := range joints {
		for _, kind := range joint.Order {
			joint.Channels[kind].Values = make([]float32, doc.FrameCount)
		}
	}
	for f := 0; f < doc.FrameCount; f++ {
		if !p.s.expectNewline() {
			return p.s.parseError("newline before frame values")
		}
		for _, joint := range joints {
			for _, kind := range joint.Order {
				p.s.skipInlineWhitespace()
				v, ok := p.s.readFloat()
				if !ok {
					return p.s.numericError("float value")
				}
				joint.Channels[kind].Values[f] = float32(v)
			}
		}
	}
	return nil
}

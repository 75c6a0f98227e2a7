package bvh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emilianavt/BVHTools/geom"
)

// WriteBVH serializes doc. precision is the number of fixed-point
// decimals for offsets and channel values (2 or 6).
func WriteBVH(doc *Document, ww io.Writer, precision int) error {
	if doc == nil || doc.Root == nil {
		return fmt.Errorf("bvh: no document to write")
	}
	if precision != 2 && precision != 6 {
		return fmt.Errorf("bvh: unsupported precision %d (want 2 or 6)", precision)
	}
	if doc.FrameCount < 1 {
		return fmt.Errorf("bvh: no frames to write")
	}
	for _, joint := range doc.Joints() {
		if len(joint.Order) == 0 {
			return fmt.Errorf("bvh: joint %s declares no channels", joint.Name)
		}
		for _, kind := range joint.Order {
			if len(joint.Channels[kind].Values) != doc.FrameCount {
				return fmt.Errorf("bvh: joint %s channel %v has %d values, want %d",
					joint.Name, kind, len(joint.Channels[kind].Values), doc.FrameCount)
			}
		}
	}

	w := bufio.NewWriter(ww)
	w.WriteString("HIERARCHY\n")
	writeJoint(w, doc.Root, 0, precision)

	w.WriteString("MOTION\n")
	fmt.Fprintf(w, "Frames: %d\n", doc.FrameCount)
	fmt.Fprintf(w, "Frame Time: %.*f\n", precision, doc.FrameTime)
	joints := doc.Joints()
	for f := 0; f < doc.FrameCount; f++ {
		first := true
		for _, joint := range joints {
			for _, kind := range joint.Order {
				if !first {
					w.WriteByte('\t')
				}
				fmt.Fprintf(w, "%.*f", precision, joint.Channels[kind].Values[f])
				first = false
			}
		}
		w.WriteByte('\n')
	}
	return w.Flush()
}

// Save writes the document to a file.
func (d *Document) Save(path string, precision int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteBVH(d, f, precision)
}

func writeJoint(w *bufio.Writer, joint *Joint, depth int, precision int) {
	indent := strings.Repeat("\t", depth)
	if depth == 0 {
		fmt.Fprintf(w, "ROOT %s\n", joint.Name)
	} else {
		fmt.Fprintf(w, "%sJOINT %s\n", indent, joint.Name)
	}
	fmt.Fprintf(w, "%s{\n", indent)
	fmt.Fprintf(w, "%s\tOFFSET\t%.*f\t%.*f\t%.*f\n", indent,
		precision, joint.Offset.X, precision, joint.Offset.Y, precision, joint.Offset.Z)
	names := make([]string, len(joint.Order))
	for i, kind := range joint.Order {
		names[i] = kind.String()
	}
	fmt.Fprintf(w, "%s\tCHANNELS %d %s\n", indent, len(joint.Order), strings.Join(names, " "))

	if len(joint.Children) == 0 {
		// Leaf joints get a synthetic End Site so the bone has a length.
		end := joint.Offset
		if end.LenSqr() == 0 {
			end = geom.Vector3{Y: 1}
		}
		fmt.Fprintf(w, "%s\tEnd Site\n", indent)
		fmt.Fprintf(w, "%s\t{\n", indent)
		fmt.Fprintf(w, "%s\t\tOFFSET\t%.*f\t%.*f\t%.*f\n", indent,
			precision, end.X, precision, end.Y, precision, end.Z)
		fmt.Fprintf(w, "%s\t}\n", indent)
	} else {
		for _, child := range joint.Children {
			writeJoint(w, child, depth+1, precision)
		}
	}
	fmt.Fprintf(w, "%s}\n", indent)
}

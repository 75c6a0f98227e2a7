package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/emilianavt/BVHTools/bvh"
	"github.com/emilianavt/BVHTools/converter"
	"github.com/emilianavt/BVHTools/rig"
)

func defaultOutputFile(input string) string {
	ext := strings.ToLower(filepath.Ext(input))
	base := input[0 : len(input)-len(ext)]
	return base + ".glb"
}

func convention(blender bool) converter.Convention {
	if blender {
		return converter.Blender
	}
	return converter.Standard
}

func saveDocument(doc *bvh.Document, output string, conv converter.Convention, conf *rig.Config, precision int) error {
	var resolver *rig.Resolver
	if conf != nil {
		resolver = conf.Resolver()
	}
	ext := strings.ToLower(filepath.Ext(output))
	if ext == ".bvh" {
		return doc.Save(output, precision)
	} else if ext == ".glb" {
		root, err := converter.SkeletonFromDocument(doc, conv)
		if err != nil {
			return err
		}
		if conf != nil && conf.Scale != 1 {
			root.ApplyScale(conf.Scale)
		}
		name := strings.TrimSuffix(filepath.Base(output), ext)
		glb := converter.NewGlbConsumer(root, name)
		if err := converter.Decode(doc, root, resolver, conv, glb); err != nil {
			return err
		}
		return glb.Save(output)
	}
	return fmt.Errorf("unsupported output type: %v", ext)
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s input.bvh [output.glb]\n", os.Args[0])
		flag.PrintDefaults()
	}
	blender := flag.Bool("blender", false, "use the Blender axis convention")
	precision := flag.Int("precision", 6, "decimals for .bvh output (2 or 6)")
	fps := flag.Float64("fps", 0, "override frame rate (0: keep the file's)")
	confFile := flag.String("config", "", "retarget config file (YAML)")
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	input := flag.Arg(0)
	output := flag.Arg(1)
	if output == "" {
		output = defaultOutputFile(input)
	}

	var conf *rig.Config
	if *confFile != "" {
		var err error
		conf, err = rig.LoadConfig(*confFile)
		if err != nil {
			log.Fatal(err)
		}
	}

	parser := &bvh.Parser{}
	if *fps > 0 {
		parser.OverrideFrameTime = 1 / *fps
	}
	doc, err := parser.Load(input)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("%s: %d joints, %d frames, %.1f fps", input, len(doc.Joints()), doc.FrameCount, 1/doc.FrameTime)

	if err := saveDocument(doc, output, convention(*blender), conf, *precision); err != nil {
		log.Fatal(err)
	}
}

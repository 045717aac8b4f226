package metro_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aretw0/metro"
	"github.com/aretw0/metro/pkg/adapters/scenefile"
	"github.com/aretw0/metro/pkg/scene"
)

// Example_basic extracts a scene, maps its metadata and writes a sidecar.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "metro-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	asset := filepath.Join(tmpDir, "crate.glb")

	svc, err := metro.New(ctx, asset)
	if err != nil {
		log.Fatal(err)
	}

	svc.ExtractFromScene(&scene.Static{
		SceneName: "crate",
		Items: []scene.Instance{{
			Name:      "Crate",
			Visible:   true,
			Transform: scene.Identity(),
			Mesh:      scenefile.Cube("Crate", 1),
		}},
	})

	_, report, err := svc.ReadFromExternalSource(map[string]any{
		"title":       "Crate",
		"accessLevel": "public",
		"studio":      "north",
	})
	if err != nil {
		log.Fatal(err)
	}

	path, err := svc.WriteSidecar(asset, ".json")
	if err != nil {
		log.Fatal(err)
	}

	rec, _ := svc.Record()
	fmt.Println(*rec.Core.Name, *rec.Core.TriangleCount)
	fmt.Println(len(report.Unrecognized), report.Unrecognized[0].Key)
	fmt.Println(filepath.Base(path))
	// Output:
	// Crate 12
	// 1 studio
	// crate.metro.json
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"site-cleaner/core/cleaner"
	"site-cleaner/core/config"
	"site-cleaner/core/manifest"

	"github.com/spf13/afero"
)

// Prints the raw plan for a destination and manifest file without removing anything.
// Usage: debug_plan [destination] [manifest]
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	dest := cfg.Cleaner.Destination
	manifestPath := cfg.Cleaner.Manifest
	if len(os.Args) > 1 {
		dest = os.Args[1]
	}
	if len(os.Args) > 2 {
		manifestPath = os.Args[2]
	}

	fsys := afero.NewOsFs()
	files, err := manifest.NewFileSource(fsys, manifestPath).Load(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	r, err := cleaner.New(fsys, dest, cfg.Cleaner.KeepPatterns())
	if err != nil {
		log.Fatal(err)
	}

	tree, err := r.CurrentTree()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintf(os.Stderr, "Entries: %d, kept: %v\n", len(tree.Entries), tree.Kept.Sorted())

	plan, err := r.Plan(cleaner.Files(files...))
	if err != nil {
		log.Fatal(err)
	}

	out, err := json.MarshalIndent(struct {
		*cleaner.Plan
		Roots []string `json:"roots"`
	}{plan, plan.Roots()}, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
}

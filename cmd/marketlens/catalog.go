package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"MarketLens/internal/catalog"
)

// sampleSeed seeds the fallback sample catalog.
const sampleSeed = 42

func runCatalog(args []string) error {
	fs := flag.NewFlagSet("catalog", flag.ExitOnError)
	seed := fs.Uint64("seed", sampleSeed, "rating generator seed")
	out := fs.String("out", "", "output file (default stdout)")
	_ = fs.Parse(args)

	data, err := yaml.Marshal(catalog.Sample(*seed))
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if *out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(*out, data, 0o644)
}

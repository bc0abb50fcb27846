package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/procurebot/negotiator/internal/scenario"
)

// #region main

func main() {
	outDir := flag.String("out", "", "directory to write fixture JSON files")
	flag.Parse()

	if *outDir == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --out path/to/dir")
		os.Exit(2)
	}

	if err := run(*outDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", outDir, err)
	}

	fixtures := scenario.BuiltinFixtures()
	for i, f := range fixtures {
		name := fmt.Sprintf("%02d_%s.json", i+1, slug(f.Description))
		path := filepath.Join(outDir, name)

		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", f.Description, err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("Wrote %s (%d bytes)\n", path, len(data))
	}

	fmt.Printf("Exported %d fixture(s) to %s\n", len(fixtures), outDir)
	return nil
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	s = nonWord.ReplaceAllString(strings.ToLower(s), "_")
	return strings.Trim(s, "_")
}

// #endregion export

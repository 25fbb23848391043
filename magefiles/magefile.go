//go:build mage

// Package main contains Mage build targets for singlelep developer tooling.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the pipeline expects.
var projectDirs = []string{
	"events",
	"features",
	"output",
}

// Init creates the project directory structure for the pipeline.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "singlelep"
	cmdPkg  = "./cmd/singlelep"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests of every package.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// corePackages hold the feature computation; everything else is glue that
// reads, stores or schedules events.
var corePackages = []string{
	"internal/kinematics",
	"internal/truth",
	"internal/lepton",
	"internal/jets",
	"internal/trigger",
	"internal/features",
	"internal/calc",
}

var gluePackages = []string{
	"internal/worker",
	"internal/eventio",
	"internal/store",
	"pkg/types",
	"cmd/singlelep",
}

// Stats prints non-blank Go line counts per package, split into the
// calculation core and the surrounding glue.
func Stats() error {
	for _, group := range []struct {
		name string
		pkgs []string
	}{{"core", corePackages}, {"glue", gluePackages}} {
		var prod, test int
		fmt.Printf("%s:\n", group.name)
		for _, pkg := range group.pkgs {
			p, t, err := countPackageLines(pkg)
			if err != nil {
				return err
			}
			fmt.Printf("  %-22s %6d prod %6d test\n", pkg, p, t)
			prod += p
			test += t
		}
		fmt.Printf("  %-22s %6d prod %6d test\n\n", "total", prod, test)
	}
	return nil
}

// countPackageLines counts non-blank lines in the .go files directly inside
// dir, separately for production and test files.
func countPackageLines(dir string) (prod, test int, err error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.go"))
	if err != nil {
		return 0, 0, err
	}
	for _, f := range files {
		n, err := countLines(f)
		if err != nil {
			return 0, 0, err
		}
		if strings.HasSuffix(f, "_test.go") {
			test += n
		} else {
			prod += n
		}
	}
	return prod, test, nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n, sc.Err()
}

// Analyze runs the calculator over every event file in events/ and writes
// one feature file per input into output/.
func Analyze() error {
	mg.Deps(Init, Build)

	files, err := filepath.Glob(filepath.Join("events", "*.yaml"))
	if err != nil {
		return err
	}
	jsonFiles, err := filepath.Glob(filepath.Join("events", "*.json"))
	if err != nil {
		return err
	}
	files = append(files, jsonFiles...)
	if len(files) == 0 {
		fmt.Println("[analyze] No event files in events/.")
		return nil
	}

	bin := filepath.Join(binDir, binName)
	for _, f := range files {
		base := filepath.Base(f)
		out := filepath.Join("output", base[:len(base)-len(filepath.Ext(base))]+".features.yaml")
		if err := sh.RunV(bin, "analyze", f, "--out", out, "--store"); err != nil {
			return fmt.Errorf("analyzing %s: %w", f, err)
		}
	}
	return nil
}

// Runs lists the runs kept in the feature store.
func Runs() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "store", "runs")
}

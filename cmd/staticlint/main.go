// Command staticlint runs the lint suite of the userdir module.
//
// A fixed set of go/analysis passes, ineffassign, nilerr and noglobalmap
// always run. Staticcheck SA checks are opt-in: list their names under
// "Staticcheck" in a config.json next to the binary. Without that file
// only the fixed set runs.
//
//	go build -o staticlint ./cmd/staticlint && ./staticlint ./...
package main

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/staticcheck"

	"github.com/patric-chuzhbe/userdir/cmd/staticlint/noglobalmap"
)

const configFileName = "config.json"

type lintConfig struct {
	Staticcheck []string
}

// readLintConfig returns an empty config when config.json is missing.
func readLintConfig() (lintConfig, error) {
	var cfg lintConfig

	executable, err := os.Executable()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(filepath.Join(filepath.Dir(executable), configFileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return cfg, err
	}

	return cfg, json.Unmarshal(data, &cfg)
}

func enabledStaticchecks(names []string) []*analysis.Analyzer {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	var result []*analysis.Analyzer
	for _, check := range staticcheck.Analyzers {
		if wanted[check.Analyzer.Name] {
			result = append(result, check.Analyzer)
		}
	}

	return result
}

func main() {
	cfg, err := readLintConfig()
	if err != nil {
		log.Fatal(err)
	}

	analyzers := []*analysis.Analyzer{
		copylock.Analyzer, // the storage embeds a sync.Mutex
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		printf.Analyzer,
		structtag.Analyzer, // json, env and validate tags
		unmarshal.Analyzer,
		unreachable.Analyzer,
		ineffassign.Analyzer,
		nilerr.Analyzer,
		noglobalmap.Analyzer,
	}

	multichecker.Main(append(analyzers, enabledStaticchecks(cfg.Staticcheck)...)...)
}

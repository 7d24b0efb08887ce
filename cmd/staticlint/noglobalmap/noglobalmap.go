// Package noglobalmap reports package-level variables of map type.
//
// A map declared at package level is mutable state shared by every goroutine
// of the process. The user table and similar structures must be owned by a
// value that guards them with a mutex and is passed to whoever needs it.
package noglobalmap

import (
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports package-level map variables outside of test files.
var Analyzer = &analysis.Analyzer{
	Name: "noglobalmap",
	Doc:  "prohibits package-level variables of map type",
	Run:  run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		filename := pass.Fset.File(file.Pos()).Name()
		if isGoBuildCacheFile(filename) || strings.HasSuffix(filename, "_test.go") {
			continue
		}

		for _, decl := range file.Decls {
			genDecl, ok := decl.(*ast.GenDecl)
			if !ok || genDecl.Tok != token.VAR {
				continue
			}

			for _, spec := range genDecl.Specs {
				valueSpec, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for _, name := range valueSpec.Names {
					if name.Name == "_" {
						continue
					}
					obj := pass.TypesInfo.Defs[name]
					if obj == nil {
						continue
					}
					if _, isMap := obj.Type().Underlying().(*types.Map); isMap {
						pass.Reportf(
							name.Pos(),
							"package-level map %s is shared mutable state, keep it in an owned struct",
							name.Name,
						)
					}
				}
			}
		}
	}
	return nil, nil
}

func isGoBuildCacheFile(path string) bool {
	path = filepath.ToSlash(path)
	return strings.Contains(path, "/go-build/") || strings.Contains(path, `\go-build\`)
}

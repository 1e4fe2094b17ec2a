// Package analyzers contains custom analyzers for static analysis.
package analyzers

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
)

// NoOsExitMainAnalyzer disallows direct calls to os.Exit in the main function
// of the main package. Deferred cleanup such as closing the history database
// and flushing the logger must run.
var NoOsExitMainAnalyzer = &analysis.Analyzer{
	Name: "noosexitmain",
	Doc:  "disallow direct calls to os.Exit in main.main function",
	Run:  runNoOsExit,
}

func runNoOsExit(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	for _, file := range pass.Files {
		for _, decl := range file.Decls {
			funcDecl, ok := decl.(*ast.FuncDecl)
			if !ok || funcDecl.Recv != nil || funcDecl.Name.Name != "main" || funcDecl.Body == nil {
				continue
			}

			ast.Inspect(funcDecl.Body, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				if isPkgFunc(pass, call, "os", "Exit") {
					pass.Reportf(call.Pos(), "direct call to os.Exit in main.main is forbidden")
				}
				return true
			})
		}
	}
	return nil, nil
}

// isPkgFunc reports whether call invokes the function name of package path.
func isPkgFunc(pass *analysis.Pass, call *ast.CallExpr, path, name string) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != name {
		return false
	}
	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil {
		return false
	}
	return fn.Pkg().Path() == path
}

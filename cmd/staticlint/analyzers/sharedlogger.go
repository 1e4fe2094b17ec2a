package analyzers

import (
	"go/ast"
	"strings"

	"golang.org/x/tools/go/analysis"
)

const zapPath = "go.uber.org/zap"

// zapConstructors build standalone loggers that ignore the shared level.
var zapConstructors = []string{"NewProduction", "NewDevelopment", "NewExample"}

// SharedLoggerAnalyzer reports zap loggers built outside internal/logger.
// Such loggers miss level changes applied on config reload.
var SharedLoggerAnalyzer = &analysis.Analyzer{
	Name: "sharedlogger",
	Doc:  "require the shared logger from internal/logger instead of zap constructors",
	Run:  runSharedLogger,
}

func runSharedLogger(pass *analysis.Pass) (interface{}, error) {
	if strings.HasSuffix(pass.Pkg.Path(), "internal/logger") {
		return nil, nil
	}

	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			for _, name := range zapConstructors {
				if isPkgFunc(pass, call, zapPath, name) {
					pass.Reportf(call.Pos(), "zap.%s outside internal/logger; use logger.Log", name)
				}
			}
			return true
		})
	}
	return nil, nil
}

// Package main implements a multichecker that runs a set of static analysis
// analyzers on Go code.
//
// This tool runs a selection of analyzers from golang.org/x/tools/go/analysis/passes
// together with the project analyzers:
//   - noosexitmain forbids os.Exit in main.main
//   - sharedlogger forbids building zap loggers outside internal/logger
//
// Usage:
//
//	go run ./cmd/staticlint ./...
//	./staticlint ./...
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unusedresult"

	"github.com/sbilibin2017/gophaproxy/cmd/staticlint/analyzers"
)

func main() {
	multichecker.Main(
		errorsas.Analyzer,
		httpresponse.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		printf.Analyzer,
		structtag.Analyzer,
		unusedresult.Analyzer,
		analyzers.NoOsExitMainAnalyzer,
		analyzers.SharedLoggerAnalyzer,
	)
}

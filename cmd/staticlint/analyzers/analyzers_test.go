package analyzers

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"
)

func TestNoOsExitMainAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), NoOsExitMainAnalyzer, "exitmain")
}

func TestSharedLoggerAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), SharedLoggerAnalyzer, "zapuse")
}

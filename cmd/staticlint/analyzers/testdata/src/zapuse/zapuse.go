package zapuse

import "go.uber.org/zap"

func build() *zap.Logger {
	l, _ := zap.NewProduction() // want "zap.NewProduction outside internal/logger; use logger.Log"
	if l == nil {
		return zap.NewNop()
	}
	return l
}

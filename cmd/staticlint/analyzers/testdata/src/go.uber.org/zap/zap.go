package zap

type Logger struct{}

func NewProduction() (*Logger, error) { return &Logger{}, nil }

func NewNop() *Logger { return &Logger{} }

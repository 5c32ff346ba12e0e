package cli

import "go.uber.org/zap"

// Logger returns the debug logger, a no-op unless --verbose is set.
func (g *Globals) Logger() *zap.SugaredLogger {
	if g.logger != nil {
		return g.logger
	}
	if !g.Verbose {
		g.logger = zap.NewNop().Sugar()
		return g.logger
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.Encoding = "json"
	logger, err := cfg.Build()
	if err != nil {
		g.logger = zap.NewNop().Sugar()
		return g.logger
	}
	g.logger = logger.Sugar().With("provider", g.Provider)
	return g.logger
}

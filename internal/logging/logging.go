package logging

import (
	"strings"

	"go.uber.org/zap"
)

// New builds the application logger. Production mode emits JSON; anything
// else gets the human-readable development encoder.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}

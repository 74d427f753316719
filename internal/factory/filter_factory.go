package factory

import (
	"fmt"
	"io"
	"os"

	"github.com/mikey/inbox-triage/internal/adapters/filter"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/ports"
	"go.uber.org/zap"
)

// FilterFactory creates email filters based on configuration
type FilterFactory struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
}

// NewFilterFactory creates a new filter factory; CLI reports go to stdout
func NewFilterFactory(cfg *config.Config, logger *zap.Logger) *FilterFactory {
	return &FilterFactory{
		cfg:    cfg,
		logger: logger,
		out:    os.Stdout,
	}
}

// CreateEmailFilter creates an email filter based on the configuration
func (f *FilterFactory) CreateEmailFilter(triager filter.Triager) (ports.EmailFilter, error) {
	serverCfg := f.cfg.GetServer()

	switch serverCfg.FilterType {
	case "smtp":
		processTimeout, err := f.cfg.GetDuration("server.process_timeout")
		if err != nil {
			return nil, err
		}
		return filter.NewSMTPFilter(
			triager,
			f.logger,
			serverCfg.ListenAddress,
			serverCfg.Headers,
			serverCfg.RelayAddress,
			serverCfg.RelayPort,
			serverCfg.RelayEnabled,
			processTimeout,
		), nil
	case "cli":
		return filter.NewCLIFilter(
			triager,
			f.logger,
			f.out,
			f.cfg.GetBool("cli.verbose"),
			f.cfg.GetBool("cli.json"),
		), nil
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", serverCfg.FilterType)
	}
}

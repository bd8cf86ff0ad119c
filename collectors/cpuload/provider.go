package cpuload

import (
	"fmt"
	"log/slog"

	"gitlab.com/tinyland/lab/load-pulse/collectors"
)

// Provider names accepted by New.
const (
	ProviderAuto     = "auto"
	ProviderGopsutil = "gopsutil"
	ProviderProcStat = "procstat"
)

// Names lists the provider names accepted by New.
func Names() []string {
	return []string{ProviderAuto, ProviderGopsutil, ProviderProcStat}
}

// New builds the named provider. "auto" uses gopsutil with /proc as a
// fallback, or /proc alone when gopsutil cannot open the current process.
func New(name string, logger *slog.Logger) (collectors.LoadProvider, error) {
	switch name {
	case ProviderGopsutil:
		return NewGopsutilProvider(logger)
	case ProviderProcStat:
		return NewProcStatProvider(logger), nil
	case ProviderAuto, "":
		procstat := NewProcStatProvider(logger)
		gp, err := NewGopsutilProvider(logger)
		if err != nil {
			if logger != nil {
				logger.Warn("gopsutil unavailable, using /proc", "error", err)
			}
			return procstat, nil
		}
		return Fallback{Primary: gp, Secondary: procstat}, nil
	default:
		return nil, fmt.Errorf("cpuload: unknown provider %q", name)
	}
}

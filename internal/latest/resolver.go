package latest

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	OriginTable   = "table"
	OriginDefault = "default"
)

// Resolution is the outcome of resolving the latest version of a tool together with where it came
// from: the name of a source, OriginTable or OriginDefault.
type Resolution struct {
	Version string
	Origin  string
}

// Resolver determines the latest version of tools. A tool's configured source is consulted first,
// then the table. Resolution never fails: lookup errors are logged and fall through to the table,
// which itself defaults to Fallback.
type Resolver struct {
	log     *zap.Logger
	table   Table
	sources map[string]Source
	timeout time.Duration
}

func NewResolver(log *zap.Logger, table Table, sources map[string]Source, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Resolver{
		log:     log,
		table:   table,
		sources: sources,
		timeout: timeout,
	}
}

func (r *Resolver) Resolve(ctx context.Context, tool string) Resolution {
	log := r.log.With(zap.String("tool", tool))

	if s, ok := r.sources[tool]; ok {
		lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
		v, err := s.Latest(lookupCtx, tool)
		cancel()
		if err == nil {
			log.Debug("Resolved latest version from source.", zap.Stringer("source", s), zap.String("version", v))
			return Resolution{Version: v, Origin: s.String()}
		}
		log.Warn("Could not look up the latest version. Using the known versions instead.", zap.Stringer("source", s), zap.Error(err))
	}

	if v, ok := r.table.Get(tool); ok {
		return Resolution{Version: v, Origin: OriginTable}
	}
	return Resolution{Version: Fallback, Origin: OriginDefault}
}

func (r *Resolver) Latest(ctx context.Context, tool string) string {
	return r.Resolve(ctx, tool).Version
}

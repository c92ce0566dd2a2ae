package merge

import (
	"filemerge/internal/cache"
	"filemerge/internal/config"
	"filemerge/internal/hasher"
	"filemerge/internal/logger"

	"go.uber.org/zap"
)

type Status struct {
	Algorithm     string
	HashCachePath string
	HashEntries   int
	PlanCachePath string
	PlanCached    bool
	PlanFiles     int
	PlanBytes     int64
}

// Inspect reports what the cache artifacts hold without validating sources.
// Artifacts written with another hash algorithm count as absent.
func Inspect(cfg *config.Config) Status {
	st := Status{
		Algorithm:     cfg.HashAlgorithm,
		HashCachePath: cfg.HashCachePath(),
		PlanCachePath: cfg.PlanCachePath(),
	}

	h, err := hasher.Open(cfg.HashAlgorithm, st.HashCachePath)
	if err != nil {
		logger.Log.Warn("cannot read caches", zap.Error(err))
		return st
	}
	st.Algorithm = h.Algorithm()
	st.HashEntries = h.Cache().Len()

	if plan, ok := cache.LoadPlan(st.PlanCachePath, st.Algorithm); ok {
		st.PlanCached = true
		st.PlanFiles = len(plan)
		st.PlanBytes = plan.TotalBytes()
	}

	return st
}

package merge

import (
	"context"
	"fmt"
	"io"

	"filemerge/internal/cache"
	"filemerge/internal/config"
	"filemerge/internal/conflict"
	"filemerge/internal/executor"
	"filemerge/internal/hasher"
	"filemerge/internal/indexer"
	"filemerge/internal/logger"
	"filemerge/internal/model"
	"filemerge/internal/progress"
	"filemerge/internal/prompt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Recorder persists runs and per-file results. Record is called concurrently.
type Recorder interface {
	Begin(run *model.Run) error
	Record(runID uint, result model.TransferResult) error
	Finish(run *model.Run) error
}

type Deps struct {
	Confirm  prompt.Confirmer
	Out      io.Writer
	Hashing  progress.Sink
	Transfer progress.Sink
	Recorder Recorder
}

type Result struct {
	Plan          model.MovePlan
	PlanFromCache bool
	Index         *indexer.Result
	Conflicts     []model.ConflictGroup
	Report        *executor.Report
	RunID         uint
}

// RunMerge plans and executes one merge. A confirmed plan is cached, so later
// runs go straight to the transfer without indexing or prompting again.
func RunMerge(ctx context.Context, cfg *config.Config, deps Deps) (*Result, error) {
	deps = withDefaults(deps)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h, err := hasher.Open(cfg.HashAlgorithm, cfg.HashCachePath())
	if err != nil {
		return nil, err
	}

	result := &Result{}

	if plan, ok := cache.LoadPlan(cfg.PlanCachePath(), h.Algorithm()); ok {
		logger.Log.Info("using cached move plan, clear the cache to plan again",
			zap.String("path", cfg.PlanCachePath()),
			zap.Int("files", len(plan)))
		result.Plan = plan
		result.PlanFromCache = true
	} else if err := buildPlan(ctx, cfg, deps, h, result); err != nil {
		return result, err
	}

	report, err := execute(ctx, cfg, deps, h, result)
	result.Report = report
	if err != nil {
		return result, err
	}

	WriteSummary(deps.Out, report)
	return result, nil
}

func buildPlan(ctx context.Context, cfg *config.Config, deps Deps, h *hasher.Hasher, result *Result) error {
	ix := indexer.New(indexer.Options{
		SourceDirs:   cfg.SourceDirs,
		OutputDir:    cfg.OutputDir,
		IgnoreList:   cfg.IgnoreList,
		Workers:      cfg.WorkerCount(),
		WatchSources: cfg.WatchSources,
		Progress:     deps.Hashing,
	}, h)

	idx, err := ix.Index(ctx)
	if err != nil {
		return fmt.Errorf("failed to index sources: %w", err)
	}
	result.Index = idx

	saveHashCache(cfg, h)

	if len(idx.Failures) > 0 {
		WriteFailures(deps.Out, "Files that could not be hashed", idx.Failures)
	}

	resolution := conflict.Detect(idx.Records)
	result.Conflicts = resolution.Conflicts()

	approved := false
	if resolution.HasConflicts() {
		WriteConflicts(deps.Out, result.Conflicts)

		approved, err = deps.Confirm.Ask(
			fmt.Sprintf("%d filename conflicts found. Keep the file from the last listed source for each?", len(result.Conflicts)),
			false)
		if err != nil {
			return err
		}
	}

	movePlan, err := resolution.Resolve(approved)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(deps.Out, "%s plan: %d files (%s) from %d scanned, %d duplicates dropped.\n",
		modeVerb(cfg.Mode), len(movePlan), humanize.IBytes(uint64(movePlan.TotalBytes())), idx.Scanned, idx.Duplicates)

	if err := cache.SavePlan(cfg.PlanCachePath(), h.Algorithm(), movePlan); err != nil {
		return fmt.Errorf("failed to save move plan: %w", err)
	}
	result.Plan = movePlan

	return nil
}

func execute(ctx context.Context, cfg *config.Config, deps Deps, h *hasher.Hasher, result *Result) (*executor.Report, error) {
	run := &model.Run{
		OutputDir:     cfg.OutputDir,
		Mode:          cfg.Mode,
		PlanFromCache: result.PlanFromCache,
		PlannedFiles:  len(result.Plan),
		PlannedBytes:  result.Plan.TotalBytes(),
	}

	recording := deps.Recorder != nil
	if recording {
		if err := deps.Recorder.Begin(run); err != nil {
			logger.Log.Warn("failed to record run, continuing without history", zap.Error(err))
			recording = false
		}
		result.RunID = run.ID
	}

	ex := executor.New(executor.Options{
		OutputDir: cfg.OutputDir,
		Mode:      cfg.Mode,
		ReadOnly:  cfg.ReadOnly,
		Workers:   cfg.WorkerCount(),
		Progress:  deps.Transfer,
		OnResult: func(r model.TransferResult) {
			if !recording {
				return
			}
			if err := deps.Recorder.Record(run.ID, r); err != nil {
				logger.Log.Warn("failed to save history", zap.Error(err))
			}
		},
	}, h)

	report, err := ex.Execute(ctx, result.Plan)

	// moves evict sources, every transfer caches its destination
	saveHashCache(cfg, h)

	if recording && report != nil {
		run.Transferred = report.Transferred
		run.Skipped = report.Skipped
		run.Failed = len(report.Failures)
		if ferr := deps.Recorder.Finish(run); ferr != nil {
			logger.Log.Warn("failed to finish run record", zap.Error(ferr))
		}
	}

	if err != nil {
		return report, fmt.Errorf("transfer interrupted: %w", err)
	}

	return report, nil
}

// ClearCaches deletes both cache artifacts and nothing else.
func ClearCaches(cfg *config.Config) error {
	return cache.Clear(cfg.HashCachePath(), cfg.PlanCachePath())
}

func saveHashCache(cfg *config.Config, h *hasher.Hasher) {
	if err := h.SaveCache(cfg.HashCachePath()); err != nil {
		logger.Log.Warn("failed to save hash cache", zap.Error(err))
		return
	}

	logger.Log.Debug("hash cache saved",
		zap.String("path", cfg.HashCachePath()),
		zap.Int("entries", h.Cache().Len()))
}

func modeVerb(mode model.TransferMode) string {
	if mode == model.ModeMove {
		return "Move"
	}
	return "Copy"
}

func withDefaults(deps Deps) Deps {
	if deps.Confirm == nil {
		deps.Confirm = prompt.Fixed(false)
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	if deps.Hashing == nil {
		deps.Hashing = progress.Nop{}
	}
	if deps.Transfer == nil {
		deps.Transfer = progress.Nop{}
	}
	return deps
}

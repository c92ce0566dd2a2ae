package executor

import (
	"cmp"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"filemerge/internal/hasher"
	"filemerge/internal/logger"
	"filemerge/internal/model"
	"filemerge/internal/progress"
	"filemerge/internal/util"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var ErrDestinationExists = errors.New("destination exists with different content")

type Options struct {
	OutputDir string
	Mode      model.TransferMode
	ReadOnly  bool
	Workers   int
	Progress  progress.Sink
	// OnResult is called from worker goroutines, once per record.
	OnResult func(model.TransferResult)
}

type Report struct {
	Planned     int
	TotalBytes  int64
	Transferred int
	Skipped     int
	Failures    []*model.FileError
}

type Executor struct {
	opts   Options
	hasher *hasher.Hasher

	dirGroup singleflight.Group
	madeDirs sync.Map
}

// New returns an Executor. h is used to compare against files already present
// in the output tree and must use the algorithm the plan was built with.
// Written destinations are added to its cache so reruns read nothing.
func New(opts Options, h *hasher.Hasher) *Executor {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Mode == "" {
		opts.Mode = model.ModeCopy
	}
	if opts.Progress == nil {
		opts.Progress = progress.Nop{}
	}
	if opts.OnResult == nil {
		opts.OnResult = func(model.TransferResult) {}
	}

	return &Executor{opts: opts, hasher: h}
}

// Execute transfers every record of plan into the output dir. Per-file
// failures are collected in the report; only cancellation returns an error.
func (e *Executor) Execute(ctx context.Context, plan model.MovePlan) (*Report, error) {
	report := &Report{
		Planned:    len(plan),
		TotalBytes: plan.TotalBytes(),
	}

	logger.Log.Info("transfer planned",
		zap.Int("files", report.Planned),
		zap.Int64("bytes", report.TotalBytes),
		zap.String("size", humanize.IBytes(uint64(report.TotalBytes))),
		zap.String("mode", string(e.opts.Mode)),
		zap.String("output", e.opts.OutputDir))

	e.opts.Progress.Start("Transferring", report.Planned, report.TotalBytes)
	defer e.opts.Progress.Finish()

	e.prepareDirs(plan)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for _, rec := range plan {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			defer e.opts.Progress.Increment()

			if err := gctx.Err(); err != nil {
				return err
			}

			result := e.transfer(rec)
			e.opts.OnResult(result)

			mu.Lock()
			defer mu.Unlock()

			switch result.Status {
			case model.TransferDone:
				report.Transferred++
			case model.TransferSkipped:
				report.Skipped++
			case model.TransferFailed:
				report.Failures = append(report.Failures, toFileError(result))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	slices.SortFunc(report.Failures, func(a, b *model.FileError) int {
		return cmp.Compare(a.Path, b.Path)
	})

	logger.Log.Info("transfer complete",
		zap.Int("transferred", report.Transferred),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", len(report.Failures)))

	return report, nil
}

// prepareDirs creates every destination directory once before any transfer.
func (e *Executor) prepareDirs(plan model.MovePlan) {
	dirs := make(map[string]struct{})
	for _, rec := range plan {
		dirs[filepath.Dir(rec.DestPath(e.opts.OutputDir))] = struct{}{}
	}

	sorted := make([]string, 0, len(dirs))
	for d := range dirs {
		sorted = append(sorted, d)
	}
	slices.Sort(sorted)

	for _, d := range sorted {
		if err := e.ensureDir(d); err != nil {
			logger.Log.Warn("failed to create destination dir",
				zap.String("dir", d),
				zap.Error(err))
		}
	}

	logger.Log.Debug("destination dirs prepared", zap.Int("dirs", len(sorted)))
}

// ensureDir creates dir at most once, even with many workers asking for it.
func (e *Executor) ensureDir(dir string) error {
	if _, ok := e.madeDirs.Load(dir); ok {
		return nil
	}

	_, err, _ := e.dirGroup.Do(dir, func() (any, error) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		e.madeDirs.Store(dir, struct{}{})
		return nil, nil
	})

	return err
}

func (e *Executor) transfer(rec model.FileRecord) model.TransferResult {
	result := model.TransferResult{
		Record:  rec,
		SrcPath: rec.SourcePath(),
		DstPath: rec.DestPath(e.opts.OutputDir),
	}

	fail := func(op string, err error) model.TransferResult {
		result.Status = model.TransferFailed
		result.Err = &model.FileError{Path: result.SrcPath, Op: op, Err: err}
		logger.Log.Error("transfer failed",
			zap.String("op", op),
			zap.String("src", result.SrcPath),
			zap.String("dst", result.DstPath),
			zap.Error(err))
		return result
	}

	if info, err := os.Lstat(result.DstPath); err == nil {
		if !info.Mode().IsRegular() || info.Size() != rec.SizeBytes {
			return fail(string(e.opts.Mode), ErrDestinationExists)
		}

		sum, err := e.hasher.Hash(result.DstPath)
		if err != nil {
			return fail("verify", err)
		}
		if sum != rec.ContentHash {
			return fail(string(e.opts.Mode), ErrDestinationExists)
		}

		result.Status = model.TransferSkipped
		logger.Log.Debug("already in place, skipping",
			zap.String("dst", result.DstPath))
		return result
	}

	if err := e.ensureDir(filepath.Dir(result.DstPath)); err != nil {
		return fail("mkdir", err)
	}

	switch e.opts.Mode {
	case model.ModeMove:
		if err := util.MoveFile(result.SrcPath, result.DstPath); err != nil {
			return fail("move", err)
		}
		e.hasher.Cache().Evict(result.SrcPath)
	default:
		if err := util.CopyFile(result.SrcPath, result.DstPath); err != nil {
			return fail("copy", err)
		}
	}

	if e.opts.ReadOnly {
		if err := util.MakeReadOnly(result.DstPath); err != nil {
			return fail("chmod", err)
		}
	}

	e.hasher.Cache().Put(result.DstPath, rec.ContentHash)

	result.Status = model.TransferDone
	logger.Log.Debug("transferred",
		zap.String("src", result.SrcPath),
		zap.String("dst", result.DstPath))

	return result
}

func toFileError(result model.TransferResult) *model.FileError {
	if fe, ok := errors.AsType[*model.FileError](result.Err); ok {
		return fe
	}
	return &model.FileError{Path: result.SrcPath, Op: "transfer", Err: result.Err}
}

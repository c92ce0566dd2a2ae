package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"filemerge/internal/hasher"
	"filemerge/internal/logger"
	"filemerge/internal/model"
	"filemerge/internal/progress"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	SourceDirs   []string // priority order, first is lowest
	OutputDir    string
	IgnoreList   []string
	Workers      int
	WatchSources bool
	Progress     progress.Sink
}

type Result struct {
	Records    []model.FileRecord
	Scanned    int
	Duplicates int
	Failures   []*model.FileError
	Evicted    int // cache entries dropped because a source changed mid-run
}

type Indexer struct {
	opts   Options
	hasher *hasher.Hasher
}

func New(opts Options, h *hasher.Hasher) *Indexer {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Progress == nil {
		opts.Progress = progress.Nop{}
	}

	return &Indexer{opts: opts, hasher: h}
}

// Index scans, hashes and deduplicates every source. The hash cache is
// updated in memory; persisting it is up to the caller.
func (ix *Indexer) Index(ctx context.Context) (*Result, error) {
	result := &Result{}

	var guard *sourceGuard
	if ix.opts.WatchSources {
		g, err := startGuard(ix.opts.SourceDirs, ix.hasher.Cache())
		if err != nil {
			logger.Log.Warn("source guard unavailable, cached hashes are trusted as is",
				zap.Error(err))
		} else {
			guard = g
			defer func() {
				result.Evicted = guard.Stop()
			}()
		}
	}

	sources := make([][]sourceFile, len(ix.opts.SourceDirs))
	for i, dir := range ix.opts.SourceDirs {
		files, err := scanSource(ctx, dir, ix.opts.OutputDir, ix.opts.IgnoreList)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		sources[i] = files
		result.Scanned += len(files)

		logger.Log.Info("source scanned",
			zap.Int("priority", i),
			zap.String("dir", dir),
			zap.Int("files", len(files)))
	}

	hashes, failures, err := ix.hashAll(ctx, sources, result.Scanned)
	if err != nil {
		return nil, err
	}
	result.Failures = failures

	accepted := newAcceptedSet()
	for i, dir := range ix.opts.SourceDirs {
		before := accepted.len()
		dups, err := ix.dedupSource(ctx, accepted, i, dir, sources[i], hashes[i])
		if err != nil {
			return nil, err
		}
		result.Duplicates += dups

		logger.Log.Info("source indexed",
			zap.Int("priority", i),
			zap.String("dir", dir),
			zap.Int("accepted", accepted.len()-before),
			zap.Int("duplicates", dups))
	}

	result.Records = accepted.records()
	return result, nil
}

// hashAll hashes every file of every source in one bounded pool. An empty
// hash marks a file that could not be read.
func (ix *Indexer) hashAll(ctx context.Context, sources [][]sourceFile, total int) ([][]string, []*model.FileError, error) {
	var totalBytes int64
	hashes := make([][]string, len(sources))
	for i, files := range sources {
		hashes[i] = make([]string, len(files))
		for _, f := range files {
			totalBytes += f.size
		}
	}

	ix.opts.Progress.Start("Hashing", total, totalBytes)
	defer ix.opts.Progress.Finish()

	var (
		mu       sync.Mutex
		failures []*model.FileError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.opts.Workers)

	for i, files := range sources {
		for j, f := range files {
			if gctx.Err() != nil {
				break
			}

			g.Go(func() error {
				defer ix.opts.Progress.Increment()

				if err := gctx.Err(); err != nil {
					return err
				}

				sum, err := ix.hasher.Hash(f.abs)
				if err != nil {
					logger.Log.Warn("failed to hash file, skipping",
						zap.String("path", f.abs),
						zap.Error(err))

					fe, ok := errors.AsType[*model.FileError](err)
					if !ok {
						fe = &model.FileError{Path: f.abs, Op: "hash", Err: err}
					}

					mu.Lock()
					failures = append(failures, fe)
					mu.Unlock()
					return nil
				}

				hashes[i][j] = sum
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	logger.Log.Info("hashing complete",
		zap.Int("files", total),
		zap.Int64("computed", ix.hasher.Computed()),
		zap.Int("failed", len(failures)))

	return hashes, failures, nil
}

// dedupSource offers every file of one source to the accepted set and joins
// before returning, so the next source sees this one's bookkeeping.
func (ix *Indexer) dedupSource(ctx context.Context, accepted *acceptedSet, priority int, dir string, files []sourceFile, hashes []string) (int, error) {
	var (
		mu   sync.Mutex
		dups int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.opts.Workers)

	for j, f := range files {
		if hashes[j] == "" {
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			loser := accepted.offer(claim{
				seq: f.seq,
				record: model.FileRecord{
					SourcePriority: priority,
					ContentHash:    hashes[j],
					SourceDir:      dir,
					RelativePath:   f.rel,
					SizeBytes:      f.size,
				},
			})
			if loser == nil {
				return nil
			}

			logger.Log.Debug("duplicate content, skipping",
				zap.String("path", loser.record.SourcePath()),
				zap.String("hash", loser.record.ContentHash))

			mu.Lock()
			dups++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	return dups, nil
}

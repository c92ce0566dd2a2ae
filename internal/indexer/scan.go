package indexer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"filemerge/internal/logger"
	"filemerge/internal/pipeline"

	"go.uber.org/zap"
)

type sourceFile struct {
	abs  string
	rel  string // slash separated
	size int64
	seq  int // position in lexical walk order
}

// scanSource lists every regular file under root in lexical order. Symlinks
// to regular files are included; symlinked directories are not followed.
func scanSource(ctx context.Context, root, outputDir string, ignoreList []string) ([]sourceFile, error) {
	walkCh := make(chan sourceFile, 256)
	errCh := make(chan error, 1)

	go func() {
		defer close(walkCh)

		errCh <- filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				logger.Log.Warn("failed to read path, skipping",
					zap.String("path", path),
					zap.Error(err))
				return nil
			}

			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if d.IsDir() {
				if path == outputDir {
					return filepath.SkipDir
				}
				return nil
			}

			info, err := regularFileInfo(path, d)
			if err != nil || info == nil {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil
			}

			walkCh <- sourceFile{
				abs:  path,
				rel:  filepath.ToSlash(rel),
				size: info.Size(),
			}
			return nil
		})
	}()

	filtered := pipeline.Filter(walkCh, func(f sourceFile) string { return f.rel }, ignoreList)

	var files []sourceFile
	for f := range filtered {
		f.seq = len(files)
		files = append(files, f)
	}

	if err := <-errCh; err != nil {
		return nil, err
	}

	return files, nil
}

func regularFileInfo(path string, d fs.DirEntry) (os.FileInfo, error) {
	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil {
			logger.Log.Debug("dangling symlink, skipping",
				zap.String("path", path))
			return nil, err
		}
		if !info.Mode().IsRegular() {
			return nil, nil
		}
		return info, nil
	}

	if !d.Type().IsRegular() {
		return nil, nil
	}

	return d.Info()
}

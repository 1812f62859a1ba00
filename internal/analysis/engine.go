package analysis

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"archmap/internal/syntax"
)

// FileTree pairs a project-relative file path with its parsed tree.
type FileTree struct {
	Path string
	Root *syntax.Node
}

// Diagnostic records a file whose contribution to the batch was
// skipped.
type Diagnostic struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Document metadata shared by every emitted document.
const schemaVersion = "1.0"

// runFiles fans per-file extraction out over a bounded worker group.
// Results come back indexed by input position so callers fold them in
// input order, which keeps parallel runs byte-identical to sequential
// ones.
func runFiles[R any](ctx context.Context, files []FileTree, workers int, extract func(*syntax.Node) R) ([]R, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]R, len(files))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = extract(file.Root)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

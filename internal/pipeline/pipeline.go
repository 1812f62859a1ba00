package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"archmap/internal/analysis"
	"archmap/internal/config"
	"archmap/internal/crawler"
	"archmap/internal/parser"
	"archmap/internal/storage"
)

// Pipeline drives the analysis commands over one project. The parser
// is shared across runs, so a watch-mode re-analysis only re-parses
// the files that actually changed.
type Pipeline struct {
	Root    string
	Config  *config.Config
	Store   *storage.Store
	Parser  *parser.Parser
	Crawler *crawler.Crawler
	Log     *slog.Logger
}

// New wires a pipeline for the given project root. A relative output
// directory lands inside the analyzed project.
func New(root string, cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	p, err := parser.NewParser()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	out := cfg.OutputDir
	if !filepath.IsAbs(out) {
		out = filepath.Join(root, out)
	}

	return &Pipeline{
		Root:    root,
		Config:  cfg,
		Store:   storage.NewStore(out),
		Parser:  p,
		Crawler: crawler.NewCrawler(cfg.IgnoreDirs...),
		Log:     logger,
	}, nil
}

// parseTreesStage parses project files into walkable trees. A file
// that fails to parse is reported through fail and skipped; the stage
// stops between files when the context is canceled.
func (p *Pipeline) parseTreesStage(ctx context.Context, files []string, fail func(string, error)) ([]analysis.FileTree, error) {
	trees := make([]analysis.FileTree, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := p.Parser.Parse(ctx, filepath.Join(p.Root, filepath.FromSlash(file)))
		if err != nil {
			p.Log.Warn("skipping file",
				slog.String("stage", "parse"),
				slog.String("file", file),
				slog.String("error", err.Error()))
			fail(file, err)
			continue
		}
		trees = append(trees, analysis.FileTree{Path: file, Root: res.AST})
	}
	return trees, nil
}

// printDiagnostics lists per-file failures after a run.
func printDiagnostics(diags []analysis.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	fmt.Printf("\n⚠️  Skipped %d file(s):\n", len(diags))
	for _, d := range diags {
		fmt.Printf("  - %s: %s\n", d.File, d.Error)
	}
}

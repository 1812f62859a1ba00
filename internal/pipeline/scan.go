package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"archmap/internal/crawler"
	"archmap/internal/storage"
)

// Scan crawls the project, parses every component's files, and writes
// one bundle per component plus the scan summary. Components without
// files still appear in the summary; they just get no bundle.
func (p *Pipeline) Scan(ctx context.Context) error {
	fmt.Printf("🔍 Scanning %s...\n", p.Root)

	components, err := p.Crawler.CollectComponents(p.Root, p.Config.ComponentDirs)
	if err != nil {
		return fmt.Errorf("failed to collect components: %w", err)
	}

	summary := &storage.Summary{
		ProjectName: filepath.Base(p.Root),
		Components:  make(map[string]storage.ComponentSummary, len(components)),
	}

	for _, comp := range components {
		bundle, err := p.parseComponentStage(ctx, comp)
		if err != nil {
			return err
		}

		if len(bundle.Analysis) > 0 {
			if err := p.Store.SaveBundle(bundle); err != nil {
				return err
			}
			fmt.Printf("💾 %s: %d files analyzed\n", comp.Name, bundle.FilesAnalyzed)
		}

		summary.Components[comp.Name] = storage.ComponentSummary{
			FilesAnalyzed: bundle.FilesAnalyzed,
			Path:          comp.Rel,
		}
		summary.TotalFilesAnalyzed += bundle.FilesAnalyzed
	}

	if err := p.Store.SaveSummary(summary); err != nil {
		return err
	}

	fmt.Printf("✅ Scan complete: %d components, %d files.\n",
		len(summary.Components), summary.TotalFilesAnalyzed)
	fmt.Printf("📁 Results saved to %s\n", p.Store.Dir())
	return nil
}

// parseComponentStage parses one component's files into its bundle.
// Unparseable files are logged and left out of the bundle.
func (p *Pipeline) parseComponentStage(ctx context.Context, comp crawler.Component) (*storage.Bundle, error) {
	bundle := &storage.Bundle{Component: comp.Name, Analysis: []storage.FileEntry{}}
	for _, file := range comp.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := p.Parser.Parse(ctx, filepath.Join(comp.Dir, filepath.FromSlash(file)))
		if err != nil {
			p.Log.Warn("skipping file",
				slog.String("stage", "scan"),
				slog.String("component", comp.Name),
				slog.String("file", file),
				slog.String("error", err.Error()))
			continue
		}
		bundle.Analysis = append(bundle.Analysis, storage.FileEntry{File: file, AST: res})
	}
	bundle.FilesAnalyzed = len(bundle.Analysis)
	return bundle, nil
}

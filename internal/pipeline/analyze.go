package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"archmap/internal/analysis"
	"archmap/internal/graph"
	"archmap/internal/storage"
)

var errBundleEntryNoTree = errors.New("bundle entry has no syntax tree")

// Analyze runs the generic architecture analysis over the project's
// sources and writes the architecture document.
func (p *Pipeline) Analyze(ctx context.Context) error {
	fmt.Printf("🏗️  Analyzing architecture of %s...\n", p.Root)

	files, err := p.Crawler.CollectFiles(p.Root)
	if err != nil {
		return fmt.Errorf("failed to collect files: %w", err)
	}
	fmt.Printf("📄 Found %d Go files.\n", len(files))

	engine := analysis.NewEngine(p.Config.Table())
	trees, err := p.parseTreesStage(ctx, files, engine.AddFailure)
	if err != nil {
		return err
	}

	if err := engine.Run(ctx, trees, p.Config.Workers); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	return p.writeArchitectureStage(p.Store, engine)
}

// AnalyzeBundles runs the same analysis over previously scanned
// bundles. The document lands next to the bundles it came from.
func (p *Pipeline) AnalyzeBundles(ctx context.Context, dir string) error {
	fmt.Printf("🏗️  Analyzing architecture from bundles in %s...\n", dir)

	store := storage.NewStore(dir)
	paths, err := store.BundleFiles()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no analysis bundles found in %s", dir)
	}

	engine := analysis.NewEngine(p.Config.Table())
	var trees []analysis.FileTree
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		bundle, err := store.LoadBundle(path)
		if err != nil {
			p.Log.Warn("skipping bundle",
				slog.String("stage", "load"),
				slog.String("bundle", filepath.Base(path)),
				slog.String("error", err.Error()))
			engine.AddFailure(filepath.Base(path), err)
			continue
		}

		fmt.Printf("📦 %s: %d files\n", bundle.Component, bundle.FilesAnalyzed)
		for _, entry := range bundle.Analysis {
			if entry.AST == nil || entry.AST.AST == nil {
				engine.AddFailure(entry.File, errBundleEntryNoTree)
				continue
			}
			trees = append(trees, analysis.FileTree{Path: entry.File, Root: entry.AST.AST})
		}
	}

	if err := engine.Run(ctx, trees, p.Config.Workers); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	return p.writeArchitectureStage(store, engine)
}

// writeArchitectureStage persists the document and prints the ranked
// summary.
func (p *Pipeline) writeArchitectureStage(store *storage.Store, engine *analysis.Engine) error {
	doc := engine.Document()
	if err := store.SaveArchitecture(doc); err != nil {
		return err
	}

	printArchitecture(doc, engine.Graph())
	printDiagnostics(engine.Diagnostics())
	fmt.Printf("\n📁 Document saved to %s\n", store.Path(storage.ArchitectureFile))
	return nil
}

func printArchitecture(doc *analysis.ArchitectureDocument, g *graph.Graph) {
	fmt.Println("\n📊 Architecture Summary")
	fmt.Printf("  -> Components: %d\n", doc.Metrics.TotalComponents)
	fmt.Printf("  -> Relationships: %d (graph: %d nodes, %d edges)\n",
		doc.Metrics.TotalRelationships, g.NodeCount(), g.EdgeCount())
	fmt.Printf("  -> Control flow patterns: %d\n", doc.Metrics.ControlFlowCount)
	fmt.Printf("  -> Data flow patterns: %d\n", doc.Metrics.DataFlowCount)

	if top := doc.TopComponents(10); len(top) > 0 {
		fmt.Println("\n🏆 Key components:")
		for _, name := range top {
			fmt.Printf("  - %s\n", name)
		}
	}

	printCounts("\n🔁 Control flow by node kind:", doc.ControlFlowByKind())
	printCounts("\n🔀 Data flow by direction:", doc.DataFlowByDirection())
}

// printCounts prints a tally map with sorted keys.
func printCounts(header string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println(header)
	for _, k := range keys {
		fmt.Printf("  - %s: %d\n", k, counts[k])
	}
}

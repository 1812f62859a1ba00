package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"archmap/internal/analysis"
	"archmap/internal/config"
	"archmap/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peSource = `package core

type PECluster struct {
	Lanes      int
	InputPort  chan int
	OutputPort chan int
}

func (c *PECluster) ScheduleTick(cycle int) {
	for i := 0; i < c.Lanes; i++ {
		select {
		case v := <-c.InputPort:
			c.OutputPort <- v + cycle
		default:
		}
	}
}
`

const demoSource = `package samples

func Demo(in, out chan int) {
	select {
	case v := <-in:
		out <- v
	}
}
`

const mainSource = `package main

func main() {}
`

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"main.go":         mainSource,
		"core/pe.go":      peSource,
		"samples/demo.go": demoSource,
	}
	for name, src := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	}
	return root
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(t *testing.T, root string) *Pipeline {
	t.Helper()
	p, err := New(root, config.DefaultConfig(), discardLogger())
	require.NoError(t, err)
	return p
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestPipeline_Scan(t *testing.T) {
	root := writeProject(t)
	p := newTestPipeline(t, root)

	require.NoError(t, p.Scan(context.Background()))

	var summary storage.Summary
	readJSON(t, p.Store.Path(storage.SummaryFile), &summary)

	rootComp := filepath.Base(root)
	assert.Equal(t, rootComp, summary.ProjectName)
	assert.Equal(t, 3, summary.TotalFilesAnalyzed)
	require.Len(t, summary.Components, 3)
	assert.Equal(t, storage.ComponentSummary{FilesAnalyzed: 1, Path: "core"}, summary.Components["core"])
	assert.Equal(t, storage.ComponentSummary{FilesAnalyzed: 1, Path: "samples"}, summary.Components["samples"])
	assert.Equal(t, storage.ComponentSummary{FilesAnalyzed: 1, Path: "."}, summary.Components[rootComp])

	for _, comp := range []string{"core", "samples", rootComp} {
		bundle, err := p.Store.LoadBundle(p.Store.Path(storage.BundleName(comp)))
		require.NoError(t, err, comp)
		assert.Equal(t, comp, bundle.Component)
		assert.Equal(t, 1, bundle.FilesAnalyzed)
		require.Len(t, bundle.Analysis, 1)
		assert.NotNil(t, bundle.Analysis[0].AST)
	}
}

func TestPipeline_AnalyzeWritesDocument(t *testing.T) {
	root := writeProject(t)
	p := newTestPipeline(t, root)

	require.NoError(t, p.Analyze(context.Background()))

	var doc analysis.ArchitectureDocument
	readJSON(t, p.Store.Path(storage.ArchitectureFile), &doc)

	// Real Go sources always surface type declarations, functions, and
	// channel-carrying fields.
	assert.NotEmpty(t, doc.Relationships)
	assert.NotEmpty(t, doc.ControlFlowPatterns)
	assert.NotEmpty(t, doc.DataFlowPatterns)

	assert.Equal(t, len(doc.Components), doc.Metrics.TotalComponents)
	assert.Equal(t, len(doc.Relationships), doc.Metrics.TotalRelationships)
	assert.Equal(t, len(doc.ControlFlowPatterns), doc.Metrics.ControlFlowCount)
	assert.Equal(t, len(doc.DataFlowPatterns), doc.Metrics.DataFlowCount)
	assert.Equal(t, "Architecture Simulator Analysis", doc.Metadata.Description)
	assert.Equal(t, "1.0", doc.Metadata.Version)
}

func TestPipeline_AnalyzeBundlesMatchesSource(t *testing.T) {
	root := writeProject(t)
	ctx := context.Background()

	p := newTestPipeline(t, root)
	require.NoError(t, p.Analyze(ctx))
	var fromSource analysis.ArchitectureDocument
	readJSON(t, p.Store.Path(storage.ArchitectureFile), &fromSource)

	cfg := config.DefaultConfig()
	cfg.OutputDir = filepath.Join(t.TempDir(), "bundles")
	p2, err := New(root, cfg, discardLogger())
	require.NoError(t, err)
	require.NoError(t, p2.Scan(ctx))
	require.NoError(t, p2.AnalyzeBundles(ctx, cfg.OutputDir))

	var fromBundles analysis.ArchitectureDocument
	readJSON(t, filepath.Join(cfg.OutputDir, storage.ArchitectureFile), &fromBundles)

	// Bundles fold in a different file order, so only the canonical
	// parts of the document are comparable byte for byte.
	assert.Equal(t, fromSource.Components, fromBundles.Components)
	assert.Equal(t, fromSource.Metrics, fromBundles.Metrics)
	assert.Equal(t, fromSource.Metadata, fromBundles.Metadata)
	assert.Len(t, fromBundles.Relationships, len(fromSource.Relationships))
}

func TestPipeline_AnalyzeBundlesRequiresBundles(t *testing.T) {
	p := newTestPipeline(t, writeProject(t))

	err := p.AnalyzeBundles(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no analysis bundles found")
}

func TestPipeline_CGRA(t *testing.T) {
	root := writeProject(t)
	p := newTestPipeline(t, root)

	require.NoError(t, p.CGRA(context.Background()))

	var doc analysis.CGRADocument
	readJSON(t, p.Store.Path(storage.ProjectFile), &doc)

	var names []string
	for _, comp := range doc.Components.ProcessingElements {
		names = append(names, comp.Name)
	}
	assert.Contains(t, names, "PECluster")

	// One select per source file with a send and a receive each.
	assert.Len(t, doc.Dataflow.Channels, 4)

	assert.Equal(t, []string{"core/pe.go"}, doc.ProjectStructure.CoreComponents)
	assert.Equal(t, []string{"samples/demo.go"}, doc.ProjectStructure.Samples)
	assert.Equal(t, []string{"main.go"}, doc.ProjectStructure.Utilities)
	assert.Empty(t, doc.ProjectStructure.Tests)
	assert.Equal(t, 3, doc.Metadata.ComponentSummary.FilesAnalyzed)
	assert.Equal(t, "cgra", doc.Metadata.AnalysisType)
}

func TestPipeline_AnalyzeToleratesUnreadableFile(t *testing.T) {
	root := writeProject(t)
	// A dangling symlink is collected by the crawler but cannot be read.
	require.NoError(t, os.Symlink(filepath.Join(root, "gone.src"), filepath.Join(root, "ghost.go")))

	var logs bytes.Buffer
	p, err := New(root, config.DefaultConfig(), slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)

	require.NoError(t, p.Analyze(context.Background()))

	_, statErr := os.Stat(p.Store.Path(storage.ArchitectureFile))
	assert.NoError(t, statErr)
	assert.Contains(t, logs.String(), "skipping file")
	assert.Contains(t, logs.String(), "ghost.go")
}

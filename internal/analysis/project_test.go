package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"archmap/internal/cgra"
	"archmap/internal/syntax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fabricTree holds a controller nested in a PE with channel traffic.
func fabricTree() *syntax.Node {
	return &syntax.Node{
		Kind: "source_file",
		Children: []*syntax.Node{
			{Kind: "type_identifier", Text: "PECluster", Children: []*syntax.Node{
				{Kind: "type_identifier", Text: "TileController"},
			}},
			{Kind: "send_statement", Start: syntax.Point{Row: 4}},
			{Kind: "send_statement", Start: syntax.Point{Row: 6}},
			{Kind: "receive_statement", Start: syntax.Point{Row: 9}},
		},
	}
}

func TestCGRAEngine_FoldMergesResults(t *testing.T) {
	e := NewCGRAEngine()
	e.Fold("core/fabric.go", AnalyzeCGRATree(fabricTree()))

	doc := e.Document()

	t.Run("components land under their categories", func(t *testing.T) {
		require.Len(t, doc.Components.ProcessingElements, 1)
		assert.Equal(t, "PECluster", doc.Components.ProcessingElements[0].Name)
		require.Len(t, doc.Components.Controls, 1)
		assert.Equal(t, "TileController", doc.Components.Controls[0].Name)
		require.Len(t, doc.Components.Relationships, 1)
		assert.Equal(t, cgra.ProcessingElements, doc.Components.Relationships[0].From)
		assert.Equal(t, cgra.Controls, doc.Components.Relationships[0].To)
	})

	t.Run("channel events survive the merge", func(t *testing.T) {
		require.Len(t, doc.Dataflow.Channels, 3)
		var sends, receives int
		for _, ev := range doc.Dataflow.Channels {
			switch ev.Kind {
			case cgra.SendStatement:
				sends++
			case cgra.ReceiveStatement:
				receives++
			}
		}
		assert.Equal(t, 2, sends)
		assert.Equal(t, 1, receives)
	})
}

func TestCGRAEngine_MetadataSummary(t *testing.T) {
	e := NewCGRAEngine()
	e.Fold("core/fabric.go", AnalyzeCGRATree(fabricTree()))

	doc := e.Document()
	meta := doc.Metadata

	assert.Equal(t, "CGRA Architecture Analysis", meta.Description)
	assert.Equal(t, "1.0", meta.Version)
	assert.Equal(t, "cgra", meta.AnalysisType)

	// 2 components + 1 containment edge: the edge list counts toward
	// the total, as the summary always has.
	assert.Equal(t, 3, meta.ComponentSummary.TotalComponents)
	assert.Equal(t, []string{
		"processing_elements", "interconnects", "memories",
		"controls", "configurations", "relationships",
	}, meta.ComponentSummary.ComponentTypes)
	assert.Equal(t, 0, meta.ComponentSummary.DataflowPatterns)
	assert.Equal(t, 1, meta.ComponentSummary.FilesAnalyzed)
}

func TestProjectStructure_Bucketing(t *testing.T) {
	cases := []struct {
		name string
		path string
		want func(s ProjectStructure) []string
	}{
		{"test files by base name", "core/pe_test.go", func(s ProjectStructure) []string { return s.Tests }},
		{"test wins over samples", "samples/pe_test.go", func(s ProjectStructure) []string { return s.Tests }},
		{"samples by path segment", "samples/demo.go", func(s ProjectStructure) []string { return s.Samples }},
		{"core marker", "core/grid.go", func(s ProjectStructure) []string { return s.CoreComponents }},
		{"cgra marker", "cgra/mesh.go", func(s ProjectStructure) []string { return s.CoreComponents }},
		// "types" carries "pe" as a substring, so the file reads as core.
		{"pe marker inside a word", "types.go", func(s ProjectStructure) []string { return s.CoreComponents }},
		{"no marker falls to utilities", "misc/format.go", func(s ProjectStructure) []string { return s.Utilities }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var s ProjectStructure
			s.bucket(tc.path)
			assert.Equal(t, []string{tc.path}, tc.want(s))
		})
	}
}

func TestCGRAEngine_FilesAnalyzedExcludesTests(t *testing.T) {
	e := NewCGRAEngine()
	empty := &syntax.Node{Kind: "source_file"}
	for _, path := range []string{
		"core/pe.go", "core/pe_test.go", "samples/demo.go", "misc/format.go",
	} {
		e.Fold(path, AnalyzeCGRATree(empty))
	}

	doc := e.Document()
	assert.Equal(t, []string{"core/pe.go"}, doc.ProjectStructure.CoreComponents)
	assert.Equal(t, []string{"core/pe_test.go"}, doc.ProjectStructure.Tests)
	assert.Equal(t, []string{"samples/demo.go"}, doc.ProjectStructure.Samples)
	assert.Equal(t, []string{"misc/format.go"}, doc.ProjectStructure.Utilities)
	assert.Equal(t, 3, doc.Metadata.ComponentSummary.FilesAnalyzed)
}

func TestCGRAEngine_EmptyDocumentShape(t *testing.T) {
	doc := NewCGRAEngine().Document()

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	text := string(data)
	assert.NotContains(t, text, "null")
	assert.Contains(t, text, `"configurations":{}`)
	assert.Contains(t, text, `"analysis_type":"cgra"`)
	assert.Equal(t, 0, doc.Metadata.ComponentSummary.TotalComponents)
	assert.Equal(t, 0, doc.Metadata.ComponentSummary.FilesAnalyzed)
}

func TestCGRAEngine_RunMatchesSequentialFold(t *testing.T) {
	trees := []FileTree{
		{Path: "core/fabric.go", Root: fabricTree()},
		{Path: "core/mem.go", Root: &syntax.Node{Kind: "type_identifier", Text: "LineBuffer"}},
		{Path: "misc/format.go", Root: &syntax.Node{Kind: "source_file"}},
	}

	sequential := NewCGRAEngine()
	for _, ft := range trees {
		sequential.Fold(ft.Path, AnalyzeCGRATree(ft.Root))
	}

	parallel := NewCGRAEngine()
	require.NoError(t, parallel.Run(context.Background(), trees, 4))

	want, err := json.Marshal(sequential.Document())
	require.NoError(t, err)
	got, err := json.Marshal(parallel.Document())
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestCGRAEngine_Diagnostics(t *testing.T) {
	e := NewCGRAEngine()
	e.AddFailure("core/broken.go", errors.New("no ast"))

	diags := e.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, "core/broken.go", diags[0].File)
	assert.Equal(t, "no ast", diags[0].Error)

	// Failed files never reach a structure bucket.
	doc := e.Document()
	assert.Equal(t, 0, doc.Metadata.ComponentSummary.FilesAnalyzed)
}

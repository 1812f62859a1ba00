package analysis

import (
	"context"
	"sort"

	"archmap/internal/graph"
	"archmap/internal/pattern"
	"archmap/internal/syntax"
)

const architectureDescription = "Architecture Simulator Analysis"

// FileResult holds everything the generic extractors found in one tree.
type FileResult struct {
	Relationships []pattern.Relationship
	ControlFlow   []pattern.FlowPattern
	DataFlow      []pattern.FlowPattern
	State         []pattern.FlowPattern
}

// Engine folds per-file extraction results into a project-wide
// architecture model. It owns the running accumulators; callers feed
// it results and read the final document once everything is in.
type Engine struct {
	table *pattern.Table

	components    map[string]struct{}
	relationships []pattern.Relationship
	controlFlow   []pattern.FlowPattern
	dataFlow      []pattern.FlowPattern
	state         []pattern.FlowPattern
	diagnostics   []Diagnostic
}

// NewEngine creates an engine classifying against the given rule table.
func NewEngine(table *pattern.Table) *Engine {
	return &Engine{
		table:         table,
		components:    map[string]struct{}{},
		relationships: []pattern.Relationship{},
		controlFlow:   []pattern.FlowPattern{},
		dataFlow:      []pattern.FlowPattern{},
		state:         []pattern.FlowPattern{},
	}
}

// AnalyzeTree runs every extractor over one tree. The engine's
// accumulators stay untouched until the result is folded.
func (e *Engine) AnalyzeTree(root *syntax.Node) FileResult {
	return FileResult{
		Relationships: pattern.Relationships(e.table, root),
		ControlFlow:   pattern.Flows(e.table, root, pattern.ControlFlow),
		DataFlow:      pattern.Flows(e.table, root, pattern.DataFlow),
		State:         pattern.Flows(e.table, root, pattern.State),
	}
}

// Run analyzes the given trees with bounded parallelism and folds the
// results in input order.
func (e *Engine) Run(ctx context.Context, files []FileTree, workers int) error {
	results, err := runFiles(ctx, files, workers, e.AnalyzeTree)
	if err != nil {
		return err
	}
	for _, res := range results {
		e.Fold(res)
	}
	return nil
}

// Fold merges one file's results into the running model. The component
// registry is the set of names seen at relationship endpoints, so a
// component contained by nothing never enters it.
func (e *Engine) Fold(res FileResult) {
	e.relationships = append(e.relationships, res.Relationships...)
	e.controlFlow = append(e.controlFlow, res.ControlFlow...)
	e.dataFlow = append(e.dataFlow, res.DataFlow...)
	e.state = append(e.state, res.State...)
	for _, rel := range res.Relationships {
		e.components[rel.From] = struct{}{}
		e.components[rel.To] = struct{}{}
	}
}

// AddFailure records a file whose input could not be analyzed. The
// batch continues without it.
func (e *Engine) AddFailure(file string, err error) {
	e.diagnostics = append(e.diagnostics, Diagnostic{File: file, Error: err.Error()})
}

// Diagnostics lists the skipped files in the order they failed.
func (e *Engine) Diagnostics() []Diagnostic {
	return e.diagnostics
}

// Graph builds the directed component graph over the folded
// relationships.
func (e *Engine) Graph() *graph.Graph {
	return graph.FromRelationships(e.relationships)
}

// Document assembles the final architecture document. Component names
// are sorted, so the document's bytes do not depend on how the fold
// was scheduled.
func (e *Engine) Document() *ArchitectureDocument {
	components := make([]string, 0, len(e.components))
	for name := range e.components {
		components = append(components, name)
	}
	sort.Strings(components)

	controlFlow := make([]ControlFlowPattern, 0, len(e.controlFlow))
	for _, p := range e.controlFlow {
		controlFlow = append(controlFlow, ControlFlowPattern{
			FlowPattern: p,
			Children:    []pattern.FlowPattern{},
		})
	}

	metrics := Metrics{
		TotalComponents:    len(components),
		TotalRelationships: len(e.relationships),
		ControlFlowCount:   len(e.controlFlow),
		DataFlowCount:      len(e.dataFlow),
	}

	return &ArchitectureDocument{
		Components:          components,
		Relationships:       e.relationships,
		ControlFlowPatterns: controlFlow,
		DataFlowPatterns:    e.dataFlow,
		StatePatterns:       e.state,
		Metrics:             metrics,
		Metadata: Metadata{
			Description: architectureDescription,
			Version:     schemaVersion,
			Summary: Summary{
				Components:          metrics.TotalComponents,
				Relationships:       metrics.TotalRelationships,
				ControlFlowPatterns: metrics.ControlFlowCount,
				DataFlowPatterns:    metrics.DataFlowCount,
			},
		},
	}
}

// ArchitectureDocument is the project-wide architecture model.
type ArchitectureDocument struct {
	Components          []string               `json:"components"`
	Relationships       []pattern.Relationship `json:"relationships"`
	ControlFlowPatterns []ControlFlowPattern   `json:"control_flow_patterns"`
	DataFlowPatterns    []pattern.FlowPattern  `json:"data_flow_patterns"`
	StatePatterns       []pattern.FlowPattern  `json:"state_patterns"`
	Metrics             Metrics                `json:"metrics"`
	Metadata            Metadata               `json:"metadata"`
}

// ControlFlowPattern wraps a control-flow record with the empty
// children list the document format has always carried.
type ControlFlowPattern struct {
	pattern.FlowPattern
	Children []pattern.FlowPattern `json:"children"`
}

// Metrics are the counts of the accumulated collections.
type Metrics struct {
	TotalComponents    int `json:"total_components"`
	TotalRelationships int `json:"total_relationships"`
	ControlFlowCount   int `json:"control_flow_count"`
	DataFlowCount      int `json:"data_flow_count"`
}

// Metadata wraps the document with its description and summary counts.
type Metadata struct {
	Description string  `json:"description"`
	Version     string  `json:"version"`
	Summary     Summary `json:"summary"`
}

// Summary duplicates the metrics counts for consumers that only read
// the metadata block.
type Summary struct {
	Components          int `json:"components"`
	Relationships       int `json:"relationships"`
	ControlFlowPatterns int `json:"control_flow_patterns"`
	DataFlowPatterns    int `json:"data_flow_patterns"`
}

// TopComponents returns the first n component names in sorted order.
func (d *ArchitectureDocument) TopComponents(n int) []string {
	if n > len(d.Components) {
		n = len(d.Components)
	}
	return d.Components[:n]
}

// ControlFlowByKind tallies control-flow patterns by node kind.
func (d *ArchitectureDocument) ControlFlowByKind() map[string]int {
	counts := map[string]int{}
	for _, p := range d.ControlFlowPatterns {
		counts[p.NodeKind]++
	}
	return counts
}

// DataFlowByDirection tallies data-flow patterns by direction.
func (d *ArchitectureDocument) DataFlowByDirection() map[string]int {
	counts := map[string]int{}
	for _, p := range d.DataFlowPatterns {
		counts[p.Direction]++
	}
	return counts
}

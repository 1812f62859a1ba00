package analysis

import (
	"context"
	"path/filepath"
	"strings"

	"archmap/internal/cgra"
	"archmap/internal/syntax"
)

const (
	cgraDescription  = "CGRA Architecture Analysis"
	cgraAnalysisType = "cgra"
)

// CGRAResult holds one file's hardware-taxonomy extraction.
type CGRAResult struct {
	Components *cgra.Components
	Dataflow   *cgra.Dataflow
}

// AnalyzeCGRATree classifies one tree against the hardware taxonomy.
func AnalyzeCGRATree(root *syntax.Node) CGRAResult {
	return CGRAResult{
		Components: cgra.AnalyzeComponents(root),
		Dataflow:   cgra.AnalyzeDataflow(root),
	}
}

// CGRAEngine folds per-file taxonomy results into a project document,
// bucketing source files by their role along the way.
type CGRAEngine struct {
	components  *cgra.Components
	dataflow    *cgra.Dataflow
	structure   ProjectStructure
	diagnostics []Diagnostic
}

// NewCGRAEngine creates an empty CGRA engine.
func NewCGRAEngine() *CGRAEngine {
	return &CGRAEngine{
		components: cgra.NewComponents(),
		dataflow:   cgra.NewDataflow(),
		structure: ProjectStructure{
			CoreComponents: []string{},
			Utilities:      []string{},
			Tests:          []string{},
			Samples:        []string{},
		},
	}
}

// Run analyzes the given trees with bounded parallelism and folds the
// results in input order.
func (e *CGRAEngine) Run(ctx context.Context, files []FileTree, workers int) error {
	results, err := runFiles(ctx, files, workers, AnalyzeCGRATree)
	if err != nil {
		return err
	}
	for i, res := range results {
		e.Fold(files[i].Path, res)
	}
	return nil
}

// Fold merges one file's results into the running model. Only files
// that were actually analyzed get bucketed into the structure.
func (e *CGRAEngine) Fold(file string, res CGRAResult) {
	e.components.Merge(res.Components)
	e.dataflow.Merge(res.Dataflow)
	e.structure.bucket(file)
}

// AddFailure records a file whose input could not be analyzed. The
// batch continues without it.
func (e *CGRAEngine) AddFailure(file string, err error) {
	e.diagnostics = append(e.diagnostics, Diagnostic{File: file, Error: err.Error()})
}

// Diagnostics lists the skipped files in the order they failed.
func (e *CGRAEngine) Diagnostics() []Diagnostic {
	return e.diagnostics
}

// Document assembles the final project document.
func (e *CGRAEngine) Document() *CGRADocument {
	filesAnalyzed := len(e.structure.CoreComponents) +
		len(e.structure.Utilities) +
		len(e.structure.Samples)

	return &CGRADocument{
		Components:       e.components,
		Dataflow:         e.dataflow,
		ProjectStructure: e.structure,
		Metadata: CGRAMetadata{
			Description:  cgraDescription,
			Version:      schemaVersion,
			AnalysisType: cgraAnalysisType,
			ComponentSummary: CGRASummary{
				TotalComponents:  e.components.Total(),
				ComponentTypes:   cgra.Labels(),
				DataflowPatterns: len(e.dataflow.Patterns),
				FilesAnalyzed:    filesAnalyzed,
			},
		},
	}
}

// CGRADocument is the hardware-taxonomy view of the project.
type CGRADocument struct {
	Components       *cgra.Components `json:"components"`
	Dataflow         *cgra.Dataflow   `json:"dataflow"`
	Configurations   struct{}         `json:"configurations"`
	ProjectStructure ProjectStructure `json:"project_structure"`
	Metadata         CGRAMetadata     `json:"metadata"`
}

// CGRAMetadata wraps the document with its description and summary.
type CGRAMetadata struct {
	Description      string      `json:"description"`
	Version          string      `json:"version"`
	AnalysisType     string      `json:"analysis_type"`
	ComponentSummary CGRASummary `json:"component_summary"`
}

// CGRASummary gives the headline counts of the taxonomy view. The
// component total includes the relationships bucket, and the files
// count covers every bucket except tests.
type CGRASummary struct {
	TotalComponents  int      `json:"total_components"`
	ComponentTypes   []string `json:"component_types"`
	DataflowPatterns int      `json:"dataflow_patterns"`
	FilesAnalyzed    int      `json:"files_analyzed"`
}

// ProjectStructure buckets analyzed files by their role in the tree.
type ProjectStructure struct {
	CoreComponents []string `json:"core_components"`
	Utilities      []string `json:"utilities"`
	Tests          []string `json:"tests"`
	Samples        []string `json:"samples"`
}

// bucket files a path into exactly one role. Test files are detected
// by base name; everything else is split on path substrings, with the
// core markers checked case-insensitively.
func (s *ProjectStructure) bucket(path string) {
	base := filepath.Base(path)
	switch {
	case strings.Contains(base, "test"):
		s.Tests = append(s.Tests, path)
	case strings.Contains(path, "samples"):
		s.Samples = append(s.Samples, path)
	case containsAny(strings.ToLower(path), "core", "cgra", "pe"):
		s.CoreComponents = append(s.CoreComponents, path)
	default:
		s.Utilities = append(s.Utilities, path)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

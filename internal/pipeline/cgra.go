package pipeline

import (
	"context"
	"fmt"

	"archmap/internal/analysis"
	"archmap/internal/cgra"
	"archmap/internal/storage"
)

// CGRA runs the hardware-taxonomy analysis over the project's sources
// and writes the project document.
func (p *Pipeline) CGRA(ctx context.Context) error {
	fmt.Printf("🔬 Running CGRA analysis of %s...\n", p.Root)

	files, err := p.Crawler.CollectFiles(p.Root)
	if err != nil {
		return fmt.Errorf("failed to collect files: %w", err)
	}
	fmt.Printf("📄 Found %d Go files.\n", len(files))

	engine := analysis.NewCGRAEngine()
	trees, err := p.parseTreesStage(ctx, files, engine.AddFailure)
	if err != nil {
		return err
	}

	if err := engine.Run(ctx, trees, p.Config.Workers); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	doc := engine.Document()
	if err := p.Store.SaveProject(doc); err != nil {
		return err
	}

	printProject(doc)
	printDiagnostics(engine.Diagnostics())
	fmt.Printf("\n📁 Document saved to %s\n", p.Store.Path(storage.ProjectFile))
	return nil
}

func printProject(doc *analysis.CGRADocument) {
	comps := doc.Components
	fmt.Println("\n🧩 CGRA Components")
	fmt.Printf("  -> processing_elements: %d\n", len(comps.ProcessingElements))
	fmt.Printf("  -> interconnects: %d\n", len(comps.Interconnects))
	fmt.Printf("  -> memories: %d\n", len(comps.Memories))
	fmt.Printf("  -> controls: %d\n", len(comps.Controls))
	fmt.Printf("  -> configurations: %d\n", len(comps.Configurations))
	fmt.Printf("  -> relationships: %d\n", len(comps.Relationships))

	var sends, receives int
	for _, ev := range doc.Dataflow.Channels {
		switch ev.Kind {
		case cgra.SendStatement:
			sends++
		case cgra.ReceiveStatement:
			receives++
		}
	}
	fmt.Printf("\n📡 Channel events: %d (%d send, %d receive)\n",
		len(doc.Dataflow.Channels), sends, receives)
	fmt.Printf("📂 Files analyzed: %d\n", doc.Metadata.ComponentSummary.FilesAnalyzed)
}

package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"archmap/internal/syntax"
)

// Result is the parse output for one source file.
type Result struct {
	FilePath string       `json:"file_path"`
	Language string       `json:"language"`
	AST      *syntax.Node `json:"ast"`
}

// Language binds a tree-sitter grammar to the file extension it parses.
type Language struct {
	Name    string
	Grammar *sitter.Language
}

// languages is the extension registry. Adding a grammar here is all it
// takes to support another language.
var languages = map[string]Language{
	".go": {Name: "go", Grammar: golang.GetLanguage()},
}

const cacheSize = 1024

// Parser turns source files into syntax trees. Parsed files are cached
// by path and modification time, so re-analysis after a change only
// pays for the files that actually changed.
type Parser struct {
	cache *lru.Cache[string, *Result]
}

// NewParser creates a parser with an empty cache.
func NewParser() (*Parser, error) {
	cache, err := lru.New[string, *Result](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create parse cache: %w", err)
	}
	return &Parser{cache: cache}, nil
}

// Parse reads and parses a single file. An unchanged file is served
// from the cache without touching the parser again.
func (p *Parser) Parse(ctx context.Context, path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", path, err)
	}

	key := fmt.Sprintf("%s|%d", path, info.ModTime().UnixNano())
	if res, ok := p.cache.Get(key); ok {
		return res, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	res, err := p.ParseSource(ctx, path, src)
	if err != nil {
		return nil, err
	}
	p.cache.Add(key, res)
	return res, nil
}

// ParseSource parses raw source bytes for the language selected by the
// path's extension.
func (p *Parser) ParseSource(ctx context.Context, path string, src []byte) (*Result, error) {
	lang, ok := languages[filepath.Ext(path)]
	if !ok {
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(path))
	}

	sp := sitter.NewParser()
	sp.SetLanguage(lang.Grammar)
	tree, err := sp.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}

	return &Result{
		FilePath: path,
		Language: lang.Name,
		AST:      convertTree(tree.RootNode(), src),
	}, nil
}

// convertTree maps a tree-sitter tree onto the analyzer's node shape:
// every node carries kind and span, leaves additionally carry the
// source text they cover. Conversion runs on an explicit worklist so
// deeply nested sources cannot exhaust the call stack.
func convertTree(root *sitter.Node, src []byte) *syntax.Node {
	if root == nil {
		return nil
	}

	type frame struct {
		src *sitter.Node
		dst *syntax.Node
	}

	out := newNode(root)
	stack := []frame{{src: root, dst: out}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		count := int(f.src.ChildCount())
		if count == 0 {
			f.dst.Text = f.src.Content(src)
			continue
		}

		f.dst.Children = make([]*syntax.Node, count)
		for i := 0; i < count; i++ {
			f.dst.Children[i] = newNode(f.src.Child(i))
		}
		for i := count - 1; i >= 0; i-- {
			stack = append(stack, frame{src: f.src.Child(i), dst: f.dst.Children[i]})
		}
	}
	return out
}

// newNode starts every node with an empty child list, so leaves
// serialize with "children": [] the way bundles always have.
func newNode(n *sitter.Node) *syntax.Node {
	return &syntax.Node{
		Kind:     n.Type(),
		Start:    syntax.Point{Row: int(n.StartPoint().Row), Column: int(n.StartPoint().Column)},
		End:      syntax.Point{Row: int(n.EndPoint().Row), Column: int(n.EndPoint().Column)},
		Children: []*syntax.Node{},
	}
}

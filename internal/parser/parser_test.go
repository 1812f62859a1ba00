package parser

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archmap/internal/syntax"
)

func TestParser_Parse(t *testing.T) {
	p, err := NewParser()
	require.NoError(t, err)

	res, err := p.Parse(context.Background(), filepath.Join("testdata", "fabric.go"))
	require.NoError(t, err)

	assert.Equal(t, "go", res.Language)
	assert.Equal(t, filepath.Join("testdata", "fabric.go"), res.FilePath)
	require.NotNil(t, res.AST)
	assert.Equal(t, "source_file", res.AST.Kind)
	assert.NotEmpty(t, res.AST.Children)
}

func TestParser_ParseSource_NodeShape(t *testing.T) {
	src := []byte("package fabric\n\ntype PE struct {\n\tLanes int\n}\n")

	p, err := NewParser()
	require.NoError(t, err)
	res, err := p.ParseSource(context.Background(), "pe.go", src)
	require.NoError(t, err)

	root := res.AST
	require.Equal(t, "source_file", root.Kind)

	// Interior nodes carry children and no text; leaves carry text.
	var leaves, interiors int
	syntax.Walk(root, "", func(n *syntax.Node, ctx string) string {
		if len(n.Children) == 0 {
			leaves++
			assert.NotEmpty(t, n.Text, "leaf %q should carry its source text", n.Kind)
		} else {
			interiors++
			assert.Empty(t, n.Text, "interior %q should not carry text", n.Kind)
		}
		return ctx
	})
	assert.Greater(t, leaves, 0)
	assert.Greater(t, interiors, 0)

	t.Run("identifier leaf", func(t *testing.T) {
		id := syntax.FirstDescendant(root, "type_identifier")
		require.NotNil(t, id)
		assert.Equal(t, "PE", id.Text)
		assert.Equal(t, 2, id.Start.Row)
	})

	t.Run("leaves serialize with an empty child list", func(t *testing.T) {
		id := syntax.FirstDescendant(root, "type_identifier")
		data, err := json.Marshal(id)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"children":[]`)
	})

	t.Run("span covers the source", func(t *testing.T) {
		assert.Equal(t, syntax.Point{Row: 0, Column: 0}, root.Start)
		assert.Equal(t, 5, root.End.Row)
	})
}

func TestParser_ParseSource_UnsupportedExtension(t *testing.T) {
	p, err := NewParser()
	require.NoError(t, err)

	_, err = p.ParseSource(context.Background(), "design.vhd", []byte("entity pe is end;"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file extension")
}

func TestParser_CacheByModTime(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "unit.go")
	require.NoError(t, os.WriteFile(path, []byte("package unit\n\nvar tick int\n"), 0644))

	p, err := NewParser()
	require.NoError(t, err)

	first, err := p.Parse(ctx, path)
	require.NoError(t, err)
	second, err := p.Parse(ctx, path)
	require.NoError(t, err)
	assert.Same(t, first, second, "unchanged file should come from the cache")

	// A new modification time invalidates the entry even if rewriting
	// the file was too fast for the clock to notice.
	require.NoError(t, os.WriteFile(path, []byte("package unit\n\nvar tock int\n"), 0644))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	third, err := p.Parse(ctx, path)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	id := syntax.FirstDescendant(third.AST, "identifier")
	require.NotNil(t, id)
	assert.Equal(t, "tock", id.Text)
}

package crawler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Component is one directory's worth of source files, destined for a
// single analysis bundle.
type Component struct {
	// Name labels the bundle.
	Name string
	// Dir is the absolute directory the Files paths are relative to.
	Dir string
	// Rel is Dir relative to the project root, "." for the root itself.
	Rel string
	// Files are slash-separated paths relative to Dir, lexically
	// ordered. Test files are included: the project-structure buckets
	// depend on seeing them.
	Files []string
}

// Crawler scans a project for Go source files.
type Crawler struct {
	ignored []string
}

// NewCrawler creates a crawler. Extra directory names are skipped on
// top of the built-in ignore list.
func NewCrawler(extra ...string) *Crawler {
	ignored := []string{".git", "vendor", "node_modules", "testdata"}
	return &Crawler{ignored: append(ignored, extra...)}
}

// CollectComponents groups the project's Go files into components.
// With configured dirs, each named subdirectory becomes one component
// and files outside them are ignored; a missing directory yields a
// component with no files. Without configured dirs, the first path
// segment of each file names its component and files directly in the
// root fall under the root directory's own name.
func (c *Crawler) CollectComponents(root string, dirs []string) ([]Component, error) {
	if len(dirs) == 0 {
		return c.collectTopLevel(root)
	}

	components := make([]Component, 0, len(dirs))
	for _, dir := range dirs {
		comp := Component{Name: dir, Dir: filepath.Join(root, dir), Rel: dir}
		if _, err := os.Stat(comp.Dir); err != nil {
			if os.IsNotExist(err) {
				components = append(components, comp)
				continue
			}
			return nil, fmt.Errorf("failed to read component directory %s: %w", comp.Dir, err)
		}
		files, err := c.collectFiles(comp.Dir)
		if err != nil {
			return nil, err
		}
		comp.Files = files
		components = append(components, comp)
	}
	return components, nil
}

// CollectFiles returns every Go file under root as a slash-separated
// root-relative path, in lexical order.
func (c *Crawler) CollectFiles(root string) ([]string, error) {
	return c.collectFiles(root)
}

// Ignored reports whether a directory name is skipped during crawling.
func (c *Crawler) Ignored(name string) bool {
	return c.skipDir(name)
}

func (c *Crawler) collectTopLevel(root string) ([]Component, error) {
	files, err := c.collectFiles(root)
	if err != nil {
		return nil, err
	}

	byName := map[string]*Component{}
	for _, file := range files {
		segment, rest, nested := strings.Cut(file, "/")
		name, dir, rel := filepath.Base(root), root, "."
		if nested {
			name, dir, rel = segment, filepath.Join(root, segment), segment
			file = rest
		}
		comp, ok := byName[name]
		if !ok {
			comp = &Component{Name: name, Dir: dir, Rel: rel}
			byName[name] = comp
		}
		comp.Files = append(comp.Files, file)
	}

	components := make([]Component, 0, len(byName))
	for _, comp := range byName {
		components = append(components, *comp)
	}
	sort.Slice(components, func(i, j int) bool {
		return components[i].Name < components[j].Name
	})
	return components, nil
}

func (c *Crawler) collectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == dir {
				return nil
			}
			if c.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(d.Name(), ".go") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to crawl %s: %w", dir, err)
	}
	return files, nil
}

func (c *Crawler) skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, ign := range c.ignored {
		if name == ign {
			return true
		}
	}
	return false
}

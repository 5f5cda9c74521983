// Package imports builds a file-level dependency graph from the
// import statements of a source tree and reports circular references.
// Cycle detection is the same visited/active-path traversal the
// scheduler uses on task dependencies, applied to files instead of
// tasks.
//
// Only references that resolve to another file inside the scanned tree
// become edges; imports of external packages are ignored. Go files are
// grouped by package directory, since Go imports name packages rather
// than files.
package imports

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/twiced-technology-gmbh/taskplan/internal/graph"
)

// Directories never worth scanning: VCS metadata and vendored or
// generated dependency trees.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"dist":         true,
}

// Report is the outcome of one tree scan.
type Report struct {
	Root   string     `json:"root"`
	Files  int        `json:"files"`
	Edges  int        `json:"edges"`
	Cycles [][]string `json:"cycles,omitempty"`
}

// Scan walks the tree under root, extracts import references from Go,
// Python, JavaScript and TypeScript files, and reports every
// dependency cycle among them.
func Scan(root string) (*Report, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	s := &scanner{
		root:     absRoot,
		goModule: readGoModule(absRoot),
		deps:     make(graph.Graph),
		isFile:   make(map[string]bool),
	}

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != absRoot && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		s.indexFile(path)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, walkErr)
	}

	// Second pass: with the full file index known, extract and resolve
	// references.
	for _, path := range s.files {
		if err := s.scanFile(path); err != nil {
			// Unreadable files are skipped, not fatal; the tree may
			// contain sockets or permission holes.
			continue
		}
	}

	edges := 0
	for _, deps := range s.deps {
		edges += len(deps)
	}

	return &Report{
		Root:   absRoot,
		Files:  len(s.files),
		Edges:  edges,
		Cycles: graph.Cycles(s.deps),
	}, nil
}

type scanner struct {
	root     string
	goModule string
	files    []string
	isFile   map[string]bool
	deps     graph.Graph
}

// indexFile records a scannable source file by its tree-relative path.
func (s *scanner) indexFile(path string) {
	switch filepath.Ext(path) {
	case ".go", ".py", ".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs":
	default:
		return
	}
	s.files = append(s.files, path)
	s.isFile[s.rel(path)] = true
}

func (s *scanner) rel(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// node is the graph identity of a file: the file itself for Python and
// JS/TS, the package directory for Go.
func (s *scanner) node(path string) string {
	if filepath.Ext(path) == ".go" {
		dir := s.rel(filepath.Dir(path))
		if dir == "." {
			return "./"
		}
		return dir + "/"
	}
	return s.rel(path)
}

func (s *scanner) addEdge(from, to string) {
	if from == to {
		return
	}
	for _, existing := range s.deps[from] {
		if existing == to {
			return
		}
	}
	s.deps[from] = append(s.deps[from], to)
	if _, ok := s.deps[to]; !ok {
		s.deps[to] = nil
	}
}

func (s *scanner) scanFile(path string) error {
	f, err := os.Open(path) //nolint:gosec // path enumerated by the walk
	if err != nil {
		return err
	}
	defer f.Close()

	from := s.node(path)
	if _, ok := s.deps[from]; !ok {
		s.deps[from] = nil
	}

	ext := filepath.Ext(path)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	inGoImportBlock := false
	for sc.Scan() {
		line := sc.Text()
		var specs []string
		switch ext {
		case ".go":
			specs, inGoImportBlock = goSpecs(line, inGoImportBlock)
		case ".py":
			specs = pythonSpecs(line)
		default:
			specs = jsSpecs(line)
		}
		for _, spec := range specs {
			if to, ok := s.resolve(path, ext, spec); ok {
				s.addEdge(from, to)
			}
		}
	}
	return sc.Err()
}

var (
	goSingleImport = regexp.MustCompile(`^\s*import\s+(?:\w+\s+|\.\s+|_\s+)?"([^"]+)"`)
	goBlockEntry   = regexp.MustCompile(`^\s*(?:\w+\s+|\.\s+|_\s+)?"([^"]+)"`)

	pyImport = regexp.MustCompile(`^\s*import\s+([\w.]+)`)
	pyFrom   = regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import\b`)

	jsFrom    = regexp.MustCompile(`\bfrom\s+['"]([^'"]+)['"]`)
	jsImport  = regexp.MustCompile(`^\s*import\s+['"]([^'"]+)['"]`)
	jsRequire = regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`)
)

// goSpecs extracts import paths from one Go source line, tracking
// whether the line sits inside an import ( ... ) block.
func goSpecs(line string, inBlock bool) ([]string, bool) {
	trimmed := strings.TrimSpace(line)
	if inBlock {
		if trimmed == ")" {
			return nil, false
		}
		if m := goBlockEntry.FindStringSubmatch(line); m != nil {
			return []string{m[1]}, true
		}
		return nil, true
	}
	if strings.HasPrefix(trimmed, "import (") {
		return nil, true
	}
	if m := goSingleImport.FindStringSubmatch(line); m != nil {
		return []string{m[1]}, false
	}
	return nil, false
}

func pythonSpecs(line string) []string {
	if m := pyFrom.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	if m := pyImport.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	return nil
}

func jsSpecs(line string) []string {
	var specs []string
	if m := jsImport.FindStringSubmatch(line); m != nil {
		specs = append(specs, m[1])
	}
	for _, m := range jsFrom.FindAllStringSubmatch(line, -1) {
		specs = append(specs, m[1])
	}
	for _, m := range jsRequire.FindAllStringSubmatch(line, -1) {
		specs = append(specs, m[1])
	}
	return specs
}

// resolve maps an import specifier to a node inside the tree. External
// references resolve to nothing and are dropped.
func (s *scanner) resolve(fromPath, ext, spec string) (string, bool) {
	switch ext {
	case ".go":
		return s.resolveGo(spec)
	case ".py":
		return s.resolvePython(fromPath, spec)
	default:
		return s.resolveJS(fromPath, spec)
	}
}

// resolveGo maps a module-qualified import path to a package directory
// in the tree.
func (s *scanner) resolveGo(spec string) (string, bool) {
	if s.goModule == "" || !strings.HasPrefix(spec, s.goModule) {
		return "", false
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(spec, s.goModule), "/")
	dir := filepath.Join(s.root, filepath.FromSlash(rel))
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", false
	}
	if rel == "" {
		return "./", true
	}
	return rel + "/", true
}

// resolvePython handles both relative (leading-dot) and tree-rooted
// absolute module references.
func (s *scanner) resolvePython(fromPath, spec string) (string, bool) {
	var baseDir string
	if strings.HasPrefix(spec, ".") {
		dots := len(spec) - len(strings.TrimLeft(spec, "."))
		baseDir = filepath.Dir(fromPath)
		for i := 1; i < dots; i++ {
			baseDir = filepath.Dir(baseDir)
		}
		spec = spec[dots:]
	} else {
		baseDir = s.root
	}

	target := filepath.Join(baseDir, filepath.FromSlash(strings.ReplaceAll(spec, ".", "/")))
	for _, candidate := range []string{target + ".py", filepath.Join(target, "__init__.py")} {
		if rel := s.rel(candidate); s.isFile[rel] {
			return rel, true
		}
	}
	return "", false
}

// jsExtensions are tried in order when a specifier has no extension.
var jsExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"}

func (s *scanner) resolveJS(fromPath, spec string) (string, bool) {
	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") {
		return "", false
	}

	target := filepath.Join(filepath.Dir(fromPath), filepath.FromSlash(spec))
	if rel := s.rel(target); s.isFile[rel] {
		return rel, true
	}
	for _, ext := range jsExtensions {
		if rel := s.rel(target + ext); s.isFile[rel] {
			return rel, true
		}
	}
	for _, ext := range jsExtensions {
		if rel := s.rel(filepath.Join(target, "index"+ext)); s.isFile[rel] {
			return rel, true
		}
	}
	return "", false
}

// readGoModule returns the module path declared in root's go.mod, or
// "" when there is none.
func readGoModule(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "go.mod")) //nolint:gosec // path under scanned root
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module "))
		}
	}
	return ""
}

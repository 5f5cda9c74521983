package imports

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

func TestScanJSCycle(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.js": `import { b } from "./b";`,
		"b.js": `const a = require("./a");`,
	})

	report, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if report.Files != 2 {
		t.Errorf("Files = %d, want 2", report.Files)
	}
	if len(report.Cycles) != 1 {
		t.Fatalf("Cycles = %v, want one two-file loop", report.Cycles)
	}
	if len(report.Cycles[0]) != 2 {
		t.Errorf("cycle = %v, want length 2", report.Cycles[0])
	}
}

func TestScanNoCyclesOnTree(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.js":       `import util from "./lib/util";`,
		"lib/util.js":  `import fs from "fs";`,
		"lib/other.js": `import util from "./util.js";`,
	})

	report, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(report.Cycles) != 0 {
		t.Errorf("Cycles = %v, want none", report.Cycles)
	}
	if report.Edges != 2 {
		t.Errorf("Edges = %d, want 2 (external fs import ignored)", report.Edges)
	}
}

func TestScanPythonRelativeCycle(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/alpha.py":    "from .beta import thing\n",
		"pkg/beta.py":     "from . import alpha\nimport os\n",
	})

	report, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	// "from . import alpha" resolves the package __init__, not
	// alpha.py, so only alpha -> beta -> __init__ exist; no cycle.
	if len(report.Cycles) != 0 {
		t.Errorf("Cycles = %v, want none", report.Cycles)
	}

	// A direct mutual import is a cycle.
	root = writeTree(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/alpha.py":    "from .beta import thing\n",
		"pkg/beta.py":     "from .alpha import other\n",
	})
	report, err = Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(report.Cycles) != 1 {
		t.Errorf("Cycles = %v, want one", report.Cycles)
	}
}

func TestScanPythonAbsoluteIntraTree(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.py":      "import helpers\n",
		"helpers.py":   "import json\n",
		"unrelated.py": "",
	})

	report, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if report.Edges != 1 {
		t.Errorf("Edges = %d, want 1 (stdlib json ignored)", report.Edges)
	}
}

func TestScanGoPackagesByDirectory(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":      "module example.com/demo\n\ngo 1.25\n",
		"main.go":     "package main\n\nimport (\n\t\"fmt\"\n\n\t\"example.com/demo/internal/web\"\n)\n",
		"internal/web/web.go":   "package web\n\nimport \"example.com/demo/internal/store\"\n",
		"internal/store/db.go":  "package store\n\nimport \"example.com/demo/internal/web\"\n",
	})

	report, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(report.Cycles) != 1 {
		t.Fatalf("Cycles = %v, want the web<->store loop", report.Cycles)
	}
}

func TestScanSkipsDependencyDirs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.js":                  `import b from "./b";`,
		"b.js":                  "",
		"node_modules/dep.js":   `import a from "../a";`,
		".git/hooks/sample.js":  `import a from "../../a";`,
	})

	report, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if report.Files != 2 {
		t.Errorf("Files = %d, want 2 (node_modules and .git skipped)", report.Files)
	}
}

func TestScanMissingRootErrors(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("want error for missing root")
	}
}

package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestImportBoundaries(t *testing.T) {
	t.Helper()

	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}

	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}

	internalDir := filepath.Join(root, "internal")
	fset := token.NewFileSet()

	type violation struct {
		file string
		imp  string
		rule string
	}
	var violations []violation

	walkErr := filepath.WalkDir(internalDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "vendor", "node_modules", ".gocache":
				return filepath.SkipDir
			default:
				return nil
			}
		}
		// tests wire fixtures across layers
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		layer := layerFor(rel)
		if layer == "" {
			return nil
		}
		disallowed := disallowedImports(modulePath, layer)
		if len(disallowed) == 0 {
			return nil
		}

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			if spec == nil || spec.Path == nil {
				continue
			}
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			for _, bad := range disallowed {
				if withinPackage(imp, bad) {
					violations = append(violations, violation{file: rel, imp: imp, rule: bad})
					break
				}
			}
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}

	if len(violations) > 0 {
		var b strings.Builder
		b.WriteString("import boundary violations:\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s imports %q (disallowed: %q)\n", v.file, v.imp, v.rule)
		}
		t.Fatal(b.String())
	}
}

// Heavy third-party SDKs stay behind the package that adapts them.
var confinedImports = map[string][]string{
	"github.com/chromedp/":        {"internal/scanner/"},
	"cloud.google.com/go/storage": {"internal/platform/objectstore/"},
	"github.com/spf13/":           {"internal/app/", "internal/cli/"},
	"github.com/fogleman/gg":      {"internal/report/"},
	"github.com/fatih/color":      {"internal/cli/"},
}

func TestThirdPartyImportsConfined(t *testing.T) {
	t.Helper()

	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}

	internalDir := filepath.Join(root, "internal")
	fset := token.NewFileSet()

	type violation struct {
		file string
		imp  string
	}
	var violations []violation

	walkErr := filepath.WalkDir(internalDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "vendor", "node_modules", ".gocache":
				return filepath.SkipDir
			default:
				return nil
			}
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			if spec == nil || spec.Path == nil {
				continue
			}
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			if !importAllowed(rel, imp) {
				violations = append(violations, violation{file: rel, imp: imp})
			}
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}

	if len(violations) > 0 {
		var b strings.Builder
		b.WriteString("confined third-party imports found outside their adapter package:\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s imports %q\n", v.file, v.imp)
		}
		t.Fatal(b.String())
	}
}

func importAllowed(rel, imp string) bool {
	for prefix, owners := range confinedImports {
		if !strings.HasPrefix(imp, prefix) {
			continue
		}
		for _, owner := range owners {
			if strings.HasPrefix(rel, owner) {
				return true
			}
		}
		return false
	}
	return true
}

// withinPackage reports whether imp is pkg or one of its subpackages.
func withinPackage(imp, pkg string) bool {
	return imp == pkg || strings.HasPrefix(imp, pkg+"/")
}

func TestWithinPackage(t *testing.T) {
	const mod = "example.com/svc"
	cases := []struct {
		imp, pkg string
		want     bool
	}{
		{mod + "/internal/cli", mod + "/internal/cli", true},
		{mod + "/internal/cli/sub", mod + "/internal/cli", true},
		{mod + "/internal/clients/redis", mod + "/internal/cli", false},
		{mod + "/internal/application", mod + "/internal/app", false},
		{mod + "/internal/httpx", mod + "/internal/http", false},
		{mod + "/internal/data/repos/user", mod + "/internal/data", true},
	}
	for _, c := range cases {
		if got := withinPackage(c.imp, c.pkg); got != c.want {
			t.Errorf("withinPackage(%q, %q) = %v, want %v", c.imp, c.pkg, got, c.want)
		}
	}
}

func layerFor(rel string) string {
	switch {
	case strings.HasPrefix(rel, "internal/domain/"):
		return "domain"
	case strings.HasPrefix(rel, "internal/platform/"), strings.HasPrefix(rel, "internal/observability/"):
		return "platform"
	case strings.HasPrefix(rel, "internal/clients/"), strings.HasPrefix(rel, "internal/scanner/"), strings.HasPrefix(rel, "internal/report/"):
		return "adapters"
	case strings.HasPrefix(rel, "internal/data/"):
		return "data"
	case strings.HasPrefix(rel, "internal/services/"), strings.HasPrefix(rel, "internal/assistant/"):
		return "services"
	case strings.HasPrefix(rel, "internal/http/"):
		return "http"
	default:
		return ""
	}
}

func disallowedImports(modulePath string, layer string) []string {
	var (
		app      = modulePath + "/internal/app"
		cli      = modulePath + "/internal/cli"
		http     = modulePath + "/internal/http"
		services = modulePath + "/internal/services"
		data     = modulePath + "/internal/data"
		clients  = modulePath + "/internal/clients"
	)
	switch layer {
	case "domain":
		return []string{app, cli, http, services, data, clients,
			modulePath + "/internal/scanner",
			modulePath + "/internal/observability",
		}
	case "platform":
		return []string{app, cli, http, services, data, clients,
			modulePath + "/internal/domain",
		}
	case "adapters":
		return []string{app, cli, http, services, data}
	case "data":
		return []string{app, cli, http, services, clients}
	case "services":
		return []string{app, cli, http}
	case "http":
		return []string{app, cli, data}
	default:
		return nil
	}
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		mp := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		if mp == "" {
			return "", fmt.Errorf("empty module path in %s", goModPath)
		}
		return mp, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}

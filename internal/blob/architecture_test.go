package blob

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestInfraImportsAreConfined ensures that backend packages stay behind
// their interfaces: only the service layer (which selects drivers) and the
// infra tree itself may import infra packages. Everything else depends on
// the core.Store and domain.CohortStore interfaces.
func TestInfraImportsAreConfined(t *testing.T) {
	infraPrefix := "phetools/internal/infra"
	allowedPrefixes := []string{
		"phetools/internal/infra",
		"phetools/internal/core",
		"phetools/cmd/",
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "phetools/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	seen := make(map[string]struct{})
	for _, pkg := range pkgs {
		if allowed(pkg.PkgPath, allowedPrefixes) {
			continue
		}
		for importPath := range pkg.Imports {
			if importPath == infraPrefix || strings.HasPrefix(importPath, infraPrefix+"/") {
				seen[pkg.PkgPath+": "+importPath] = struct{}{}
			}
		}
	}

	if len(seen) > 0 {
		violations := make([]string, 0, len(seen))
		for v := range seen {
			violations = append(violations, v)
		}
		sort.Strings(violations)
		for _, v := range violations {
			t.Errorf("forbidden import of infra package: %s", v)
		}
		t.Fatalf("found %d forbidden imports of infra packages", len(violations))
	}
}

// TestDomainStaysPure ensures pkg/domain never depends on internal
// packages; the domain model is the bottom of the dependency graph.
func TestDomainStaysPure(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, "phetools/pkg/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	for _, pkg := range pkgs {
		for importPath := range pkg.Imports {
			if strings.HasPrefix(importPath, "phetools/internal/") {
				t.Errorf("%s imports %s", pkg.PkgPath, importPath)
			}
		}
	}
}

func allowed(pkgPath string, prefixes []string) bool {
	for _, p := range prefixes {
		if pkgPath == strings.TrimSuffix(p, "/") || strings.HasPrefix(pkgPath, p) {
			return true
		}
	}
	// Test binaries get synthetic package paths with a ".test" suffix.
	return strings.HasSuffix(pkgPath, ".test")
}

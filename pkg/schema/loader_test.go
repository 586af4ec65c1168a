package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateBuiltinSuite(t *testing.T) {
	doc := map[string]any{
		"output": "output.xlsx",
		"pair":   "rowprod",
		"scales": []any{10, 100, 1000, 10000},
		"trials": 10,
		"probe":  "rss",
		"tolerance": map[string]any{
			"mode": "default",
		},
	}
	errs, err := ValidateBuiltin(Suite, doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) != 0 {
		t.Fatalf("suite should pass: %v", errs)
	}
}

func TestValidateBuiltinSuiteViolations(t *testing.T) {
	cases := map[string]map[string]any{
		"zero scale":      {"scales": []any{0, 10}},
		"duplicate scale": {"scales": []any{10, 10}},
		"bad output":      {"output": "results.json"},
		"bad probe":       {"probe": "vms"},
		"unknown key":     {"api_key": "sk-123"},
		"zero trials":     {"trials": 0},
		"bad mode":        {"tolerance": map[string]any{"mode": "loose"}},
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			errs, err := ValidateBuiltin(Suite, doc)
			if err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
			if len(errs) == 0 {
				t.Fatal("expected schema violations")
			}
		})
	}
}

func TestValidateBuiltinReportRequiresRunID(t *testing.T) {
	errs, err := ValidateBuiltin(Report, map[string]any{"destination": "output.xlsx"})
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range errs {
		if strings.Contains(e, "run_id") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected run_id violation, got %v", errs)
	}
}

func TestValidateBuiltinUnknownName(t *testing.T) {
	if _, err := ValidateBuiltin("statement", map[string]any{}); err == nil {
		t.Fatal("expected error for unknown schema")
	}
}

func TestValidateSchemaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.schema.json")
	if err := os.WriteFile(path, []byte(`{"type":"object","required":["title"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	errs, err := Validate(path, map[string]any{"title": "x"})
	if err != nil || len(errs) != 0 {
		t.Fatalf("Validate = %v, %v", errs, err)
	}
	errs, err = Validate(path, map[string]any{})
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) == 0 {
		t.Fatal("expected violation for missing title")
	}
}

func TestValidateMissingSchemaFile(t *testing.T) {
	_, err := Validate(filepath.Join(t.TempDir(), "missing.schema.json"), map[string]any{})
	if err == nil {
		t.Fatal("expected schema loader error")
	}
	if !strings.Contains(err.Error(), "validate") {
		t.Fatalf("unexpected error: %v", err)
	}
}

package schema

import (
	"embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed v1/*.schema.json
var builtin embed.FS

const (
	Suite  = "suite"
	Report = "report"
)

// Validate checks doc against the schema file at schemaPath.
func Validate(schemaPath string, doc any) ([]string, error) {
	return validate(schemaPath, gojsonschema.NewReferenceLoader("file://"+schemaPath), doc)
}

// ValidateBuiltin checks doc against one of the schemas shipped in v1/.
func ValidateBuiltin(name string, doc any) ([]string, error) {
	raw, err := builtin.ReadFile("v1/" + name + ".schema.json")
	if err != nil {
		return nil, fmt.Errorf("unknown builtin schema %s: %w", name, err)
	}
	return validate(name, gojsonschema.NewBytesLoader(raw), doc)
}

func validate(label string, schemaLoader gojsonschema.JSONLoader, doc any) ([]string, error) {
	docLoader := gojsonschema.NewGoLoader(doc)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", label, err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs, nil
}

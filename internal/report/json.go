package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/harness"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/schema"
)

// WriteJSON validates r against the report schema before writing it.
func WriteJSON(path string, r harness.Report) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	errs, err := schema.ValidateBuiltin(schema.Report, doc)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return fmt.Errorf("run report invalid: %v", errs)
	}
	return os.WriteFile(path, raw, 0o644)
}

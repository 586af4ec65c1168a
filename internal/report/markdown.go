package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/harness"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/types"
)

func BuildMarkdown(r harness.Report) string {
	status := types.SubstitutableYes
	if !r.Verdict.Substitutable {
		status = types.SubstitutableNo
	}
	if r.Error != "" {
		status = "FAILED"
	}
	var b strings.Builder
	b.WriteString("# SaFE API Pair Report\n\n")
	b.WriteString(fmt.Sprintf("- Run: `%s`\n", r.RunID))
	b.WriteString(fmt.Sprintf("- APIs: `%s` vs `%s`\n", r.Pair.API1, r.Pair.API2))
	b.WriteString(fmt.Sprintf("- Package: `%s`\n", r.Pair.Package))
	if r.Pair.Description != "" {
		b.WriteString(fmt.Sprintf("- Description: %s\n", escape(r.Pair.Description)))
	}
	b.WriteString(fmt.Sprintf("- Substitutable: **%s**\n", status))
	b.WriteString(fmt.Sprintf("- Scales: `%s`\n", r.Scales.Key()))
	b.WriteString(fmt.Sprintf("- Tolerance: abs `%g`, rel `%g`\n", r.Tolerance.Abs, r.Tolerance.Rel))
	if r.Destination != "" {
		b.WriteString(fmt.Sprintf("- Results: `%s`\n", r.Destination))
	}

	if !r.Verdict.Substitutable && r.Verdict.FailedScale > 0 {
		b.WriteString("\n## Equivalence\n\n")
		b.WriteString(fmt.Sprintf("Output mismatch at N=%d: %s\n", r.Verdict.FailedScale, escape(r.Verdict.Reason)))
	}

	if r.Error != "" {
		b.WriteString("\n## Error\n\n")
		b.WriteString("```\n" + r.Error + "\n```\n")
	}

	if len(r.Metrics) > 0 {
		b.WriteString("\n## Benchmark\n\n")
		b.WriteString("| N | Time v1 (s) | Time v2 (s) | Speedup | Memory v1 (MB) | Memory v2 (MB) |\n")
		b.WriteString("|---:|---:|---:|---:|---:|---:|\n")
		for _, m := range r.Metrics {
			b.WriteString(fmt.Sprintf("| %d | %.3e | %.3e | %s | %.3f | %.3f |\n",
				m.Scale, m.AvgTime1, m.AvgTime2, speedup(m.AvgTime1, m.AvgTime2), m.Mem1, m.Mem2))
		}
	}
	return b.String()
}

// speedup is v1 time over v2 time; above 1 means v2 is faster.
func speedup(t1, t2 float64) string {
	if t2 <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2fx", t1/t2)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func WriteMarkdown(path string, r harness.Report) error {
	return os.WriteFile(path, []byte(BuildMarkdown(r)), 0o644)
}

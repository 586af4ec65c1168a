package types

import (
	"fmt"
	"strconv"
)

const (
	SubstitutableYes    = "Yes"
	SubstitutableNo     = "No"
	SubstitutableFailed = "Failed"
)

const (
	ColAPI1          = "api1"
	ColAPI2          = "api2"
	ColPackage       = "package"
	ColDescription   = "description"
	ColSubstitutable = "substitutable"
	ColScales        = "scales"
	ColError         = "error"
)

// Columns of the upstream collaborator tables.
const (
	ColTitle         = "title"
	ColLink          = "link"
	ColCreationDate  = "creation_date"
	ColScore         = "score"
	ColTags          = "tags"
	ColAnswersText   = "answers_text"
	ColCodeBlocks    = "code_blocks"
	ColGeneratedCode = "generated_code"
)

func TimeColumn(i, method int) string   { return fmt.Sprintf("time%d_%d", i, method) }
func MemoryColumn(i, method int) string { return fmt.Sprintf("memory%d_%d", i, method) }

// ResultRow is the flat, persisted record of one pair's run.
type ResultRow struct {
	Pair          CandidatePair
	Substitutable bool
	Scales        ScaleSet
	// Metrics is indexed like Scales and stays nil when benchmarking was skipped.
	Metrics []ScaleMetrics
	Error   string
}

// SubstitutableLabel is "Failed" for any row carrying an error, whichever
// phase produced it; a failed pair has no verdict.
func (r ResultRow) SubstitutableLabel() string {
	if r.Error != "" {
		return SubstitutableFailed
	}
	if r.Substitutable {
		return SubstitutableYes
	}
	return SubstitutableNo
}

// Columns returns the full column set for the row's scale set, metric columns
// included even when they will be left empty.
func (r ResultRow) Columns() []string {
	cols := []string{ColAPI1, ColAPI2, ColPackage, ColDescription, ColSubstitutable, ColScales}
	for i := range r.Scales {
		n := i + 1
		cols = append(cols, TimeColumn(n, 1), TimeColumn(n, 2), MemoryColumn(n, 1), MemoryColumn(n, 2))
	}
	return append(cols, ColError)
}

func (r ResultRow) Values() map[string]string {
	v := map[string]string{
		ColAPI1:          r.Pair.API1,
		ColAPI2:          r.Pair.API2,
		ColPackage:       r.Pair.Package,
		ColDescription:   r.Pair.Description,
		ColSubstitutable: r.SubstitutableLabel(),
		ColScales:        r.Scales.Key(),
		ColError:         r.Error,
	}
	for i, m := range r.Metrics {
		n := i + 1
		v[TimeColumn(n, 1)] = FormatFloat(m.AvgTime1)
		v[TimeColumn(n, 2)] = FormatFloat(m.AvgTime2)
		v[MemoryColumn(n, 1)] = FormatFloat(m.Mem1)
		v[MemoryColumn(n, 2)] = FormatFloat(m.Mem2)
	}
	return v
}

func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

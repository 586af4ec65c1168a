package types

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CandidatePair identifies the two APIs under comparison.
type CandidatePair struct {
	API1        string `json:"api1" yaml:"api1"`
	API2        string `json:"api2" yaml:"api2"`
	Package     string `json:"package" yaml:"package"`
	Description string `json:"description" yaml:"description"`
}

func (p CandidatePair) String() string {
	return p.API1 + " <-> " + p.API2
}

var ErrInvalidScaleSet = errors.New("invalid scale set")

// EmptyScalesKey is the persisted key of an empty scale set. It is never
// blank so an empty-set row is told apart from a row predating the scales
// column.
const EmptyScalesKey = "none"

// ScaleSet is the ordered list of input sizes used for one run.
type ScaleSet []int

// DefaultScales mirrors the four input sizes used by generated benchmark cases.
func DefaultScales() ScaleSet {
	return ScaleSet{10, 100, 1000, 10000}
}

func (s ScaleSet) Validate() error {
	seen := make(map[int]struct{}, len(s))
	for _, n := range s {
		if n <= 0 {
			return fmt.Errorf("%w: scale %d must be positive", ErrInvalidScaleSet, n)
		}
		if _, ok := seen[n]; ok {
			return fmt.Errorf("%w: duplicate scale %d", ErrInvalidScaleSet, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// Ascending returns a sorted copy; the receiver is left untouched.
func (s ScaleSet) Ascending() ScaleSet {
	out := make(ScaleSet, len(s))
	copy(out, s)
	sort.Ints(out)
	return out
}

// Key renders the set as "10;100;1000", or EmptyScalesKey for an empty set.
// It is the schema key stored with every result row so tables never mix runs
// over different scale sets.
func (s ScaleSet) Key() string {
	if len(s) == 0 {
		return EmptyScalesKey
	}
	parts := make([]string, 0, len(s))
	for _, n := range s {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ";")
}

func ParseScaleSet(raw string) (ScaleSet, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == EmptyScalesKey {
		return ScaleSet{}, nil
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == ',' })
	out := make(ScaleSet, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("parse scale %q: %w", f, err)
		}
		out = append(out, n)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// ScaleMetrics is the benchmark record for one pair at one scale. Times are
// seconds, memory is megabytes.
type ScaleMetrics struct {
	Scale    int     `json:"scale"`
	AvgTime1 float64 `json:"avg_time_v1"`
	AvgTime2 float64 `json:"avg_time_v2"`
	Mem1     float64 `json:"mem_v1"`
	Mem2     float64 `json:"mem_v2"`
	StdTime1 float64 `json:"std_time_v1"`
	StdTime2 float64 `json:"std_time_v2"`
	Trials   int     `json:"trials"`
}

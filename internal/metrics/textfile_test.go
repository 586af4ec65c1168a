package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/harness"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/oracle"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/types"
)

func sample() harness.Report {
	return harness.Report{
		Pair:    types.CandidatePair{API1: "a", API2: "b", Package: "gonum"},
		Scales:  types.ScaleSet{10},
		Verdict: oracle.Verdict{Substitutable: true, Checked: []int{10}},
		Metrics: []types.ScaleMetrics{{Scale: 10, AvgTime1: 0.5, AvgTime2: 0.25, Mem1: 1, Mem2: 2}},
	}
}

func TestRegistryGauges(t *testing.T) {
	reg := Registry(sample())
	n, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatal(err)
	}
	// 2 time + 2 memory series + 1 verdict
	if n != 5 {
		t.Fatalf("series = %d, want 5", n)
	}

	expected := `
# HELP safe_benchmark_time_seconds Mean wall-clock time of one call at a scale.
# TYPE safe_benchmark_time_seconds gauge
safe_benchmark_time_seconds{api1="a",api2="b",method="1",package="gonum",scale="10"} 0.5
safe_benchmark_time_seconds{api1="a",api2="b",method="2",package="gonum",scale="10"} 0.25
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "safe_benchmark_time_seconds"); err != nil {
		t.Fatal(err)
	}
}

func TestRegistryNotSubstitutable(t *testing.T) {
	r := sample()
	r.Verdict.Substitutable = false
	r.Metrics = nil
	reg := Registry(r)
	expected := `
# HELP safe_pair_substitutable 1 when both APIs agree at every tested scale.
# TYPE safe_pair_substitutable gauge
safe_pair_substitutable{api1="a",api2="b",package="gonum"} 0
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "safe_pair_substitutable"); err != nil {
		t.Fatal(err)
	}
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "safe.prom")
	if err := WriteTextfile(path, sample()); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `safe_benchmark_memory_megabytes{api1="a",api2="b",method="2",package="gonum",scale="10"} 2`) {
		t.Fatalf("textfile:\n%s", raw)
	}
}

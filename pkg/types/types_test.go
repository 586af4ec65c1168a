package types

import (
	"errors"
	"reflect"
	"testing"
)

func TestScaleSetValidate(t *testing.T) {
	cases := []struct {
		name    string
		in      ScaleSet
		wantErr bool
	}{
		{"default", DefaultScales(), false},
		{"empty", ScaleSet{}, false},
		{"zero", ScaleSet{0, 10}, true},
		{"negative", ScaleSet{-1}, true},
		{"duplicate", ScaleSet{10, 100, 10}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestScaleSetAscendingDoesNotMutate(t *testing.T) {
	s := ScaleSet{1000, 10, 100}
	got := s.Ascending()
	if !reflect.DeepEqual(got, ScaleSet{10, 100, 1000}) {
		t.Fatalf("Ascending() = %v", got)
	}
	if !reflect.DeepEqual(s, ScaleSet{1000, 10, 100}) {
		t.Fatalf("receiver mutated: %v", s)
	}
}

func TestParseScaleSet(t *testing.T) {
	got, err := ParseScaleSet(" 10, 100;1000 ")
	if err != nil {
		t.Fatal(err)
	}
	if got.Key() != "10;100;1000" {
		t.Fatalf("Key() = %q", got.Key())
	}
	if _, err := ParseScaleSet("10,x"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := ParseScaleSet("10,10"); !errors.Is(err, ErrInvalidScaleSet) {
		t.Fatalf("err = %v, want ErrInvalidScaleSet", err)
	}
	empty, err := ParseScaleSet(ScaleSet{}.Key())
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty key did not round trip: %v %v", empty, err)
	}
}

func TestResultRowColumnsAndValues(t *testing.T) {
	row := ResultRow{
		Pair:          CandidatePair{API1: "numpy.prod", API2: "numpy.multiply.reduce", Package: "numpy"},
		Substitutable: true,
		Scales:        ScaleSet{10, 100},
		Metrics: []ScaleMetrics{
			{Scale: 10, AvgTime1: 1.5e-6, AvgTime2: 2e-6, Mem1: 0, Mem2: 0.25},
			{Scale: 100, AvgTime1: 3e-6, AvgTime2: 4e-6, Mem1: 0.5, Mem2: 0.5},
		},
	}
	want := []string{"api1", "api2", "package", "description", "substitutable", "scales",
		"time1_1", "time1_2", "memory1_1", "memory1_2",
		"time2_1", "time2_2", "memory2_1", "memory2_2", "error"}
	if !reflect.DeepEqual(row.Columns(), want) {
		t.Fatalf("Columns() = %v", row.Columns())
	}
	v := row.Values()
	if v[ColSubstitutable] != SubstitutableYes || v["time1_1"] != "1.5e-06" || v["memory1_2"] != "0.25" {
		t.Fatalf("unexpected values %v", v)
	}
}

func TestResultRowNotSubstitutableLeavesMetricsEmpty(t *testing.T) {
	row := ResultRow{Pair: CandidatePair{API1: "a", API2: "b"}, Scales: DefaultScales()}
	v := row.Values()
	if v[ColSubstitutable] != SubstitutableNo {
		t.Fatalf("label = %q", v[ColSubstitutable])
	}
	if _, ok := v[TimeColumn(1, 1)]; ok {
		t.Fatal("metric cell present without metrics")
	}
	if len(row.Columns()) != 6+4*4+1 {
		t.Fatalf("expected full column set, got %d", len(row.Columns()))
	}
}

func TestTextOrEmpty(t *testing.T) {
	s := "code"
	var nilStr *string
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"nan", ""},
		{"NaN", ""},
		{"text", "text"},
		{&s, "code"},
		{nilStr, ""},
		{[]byte("bytes"), "bytes"},
		{3.5, ""},
		{42, ""},
	}
	for _, tc := range cases {
		if got := TextOrEmpty(tc.in); got != tc.want {
			t.Errorf("TextOrEmpty(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResultRowErrorIsLabelledFailed(t *testing.T) {
	for _, substitutable := range []bool{true, false} {
		row := ResultRow{Substitutable: substitutable, Scales: ScaleSet{10}, Error: "method 2 at scale 10: boom"}
		if got := row.Values()[ColSubstitutable]; got != SubstitutableFailed {
			t.Errorf("substitutable=%v: label = %q, want %q", substitutable, got, SubstitutableFailed)
		}
	}
}

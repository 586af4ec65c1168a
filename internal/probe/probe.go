// Package probe samples the memory footprint of the running process.
package probe

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/prometheus/procfs"
)

const (
	KindRSS  = "rss"
	KindHeap = "heap"

	bytesPerMB = 1024 * 1024
)

// ErrUnavailable is returned when the OS cannot report process memory. Callers
// must treat it as fatal rather than substituting a made-up number.
var ErrUnavailable = errors.New("process memory query unavailable")

type Probe interface {
	// SampleMemory returns the process footprint in megabytes.
	SampleMemory() (float64, error)
}

// RSSProbe reads resident set size from /proc/self/stat.
type RSSProbe struct {
	proc procfs.Proc
}

func NewRSSProbe() (*RSSProbe, error) {
	p, err := procfs.Self()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &RSSProbe{proc: p}, nil
}

func (r *RSSProbe) SampleMemory() (float64, error) {
	stat, err := r.proc.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: read process stat: %v", ErrUnavailable, err)
	}
	return float64(stat.ResidentMemory()) / bytesPerMB, nil
}

// HeapProbe reports in-use Go heap. It is an explicit alternative for hosts
// without procfs, not a fallback for RSSProbe.
type HeapProbe struct{}

func (HeapProbe) SampleMemory() (float64, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.HeapInuse) / bytesPerMB, nil
}

func New(kind string) (Probe, error) {
	switch kind {
	case "", KindRSS:
		return NewRSSProbe()
	case KindHeap:
		return HeapProbe{}, nil
	default:
		return nil, fmt.Errorf("unsupported probe %s", kind)
	}
}

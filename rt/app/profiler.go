package app

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler keeps the CPU time of the most recent run of each named scope and
// a set of counters. Scopes are reported in first-seen order.
type Profiler struct {
	Scopes     map[string]time.Duration
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string

	FPS float64

	now        func() time.Time
	frames     int
	fpsStarted time.Time
}

func NewProfiler() *Profiler {
	return newProfiler(time.Now)
}

func newProfiler(now func() time.Time) *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
		Order:      make([]string, 0),
		now:        now,
		fpsStarted: now(),
	}
}

func (p *Profiler) BeginScope(name string) {
	p.StartTimes[name] = p.now()
	for _, n := range p.Order {
		if n == name {
			return
		}
	}
	p.Order = append(p.Order, name)
}

func (p *Profiler) EndScope(name string) {
	if start, ok := p.StartTimes[name]; ok {
		p.Scopes[name] = p.now().Sub(start)
	}
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

func (p *Profiler) Incr(name string) {
	p.Counts[name]++
}

// FrameDone counts a frame and refreshes FPS once at least a second has
// passed since the last refresh. It reports whether FPS changed.
func (p *Profiler) FrameDone() bool {
	p.frames++
	elapsed := p.now().Sub(p.fpsStarted)
	if elapsed < time.Second {
		return false
	}
	p.FPS = float64(p.frames) / elapsed.Seconds()
	p.frames = 0
	p.fpsStarted = p.now()
	return true
}

func (p *Profiler) Reset() {
	for k := range p.Scopes {
		p.Scopes[k] = 0
	}
}

// StatsLines renders timings then counters, one entry per line.
func (p *Profiler) StatsLines() []string {
	lines := []string{fmt.Sprintf("FPS %.0f", p.FPS), "Timings (CPU):"}
	for _, name := range p.Order {
		ms := float64(p.Scopes[name].Microseconds()) / 1000.0
		lines = append(lines, fmt.Sprintf("  %-10s %6.2f ms", name, ms))
	}

	if len(p.Counts) > 0 {
		lines = append(lines, "Stats:")
		keys := make([]string, 0, len(p.Counts))
		for k := range p.Counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("  %-10s %6d", k, p.Counts[k]))
		}
	}
	return lines
}

func (p *Profiler) String() string {
	return strings.Join(p.StatsLines(), "\n")
}

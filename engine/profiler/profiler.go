//go:build profile

// Package profiler records nested timing spans of the frame loop. A span
// opened while no other span is open starts a frame; the last N frames are
// kept and can be summarized or dumped in speedscope's evented format.
//
// Spans must be opened and closed on the frame loop thread.
package profiler

import (
	"cmp"
	"encoding/json"
	"errors"
	"os"
	"slices"
	"time"
)

type span struct {
	name       string
	seq, depth int // open order and nesting level within the frame
	start, end time.Time
}

type frame struct{ spans []span }

var (
	frames []frame // ring of completed frames
	next   int     // ring write position
	filled bool
	cur    frame
	depth  int
	opened int
	ready  bool
)

// Init keeps the spans of the last n frames.
func Init(n int) {
	if n <= 0 {
		n = 600
	}
	frames = make([]frame, n)
	next, filled, depth, ready = 0, false, 0, true
	cur = frame{}
}

// Enabled reports whether spans are being recorded.
func Enabled() bool { return ready }

// Start opens a span and returns the func that closes it.
func Start(name string) func() {
	if !ready {
		return func() {}
	}
	if depth == 0 {
		cur = frame{}
		opened = 0
	}
	sp := span{name: name, seq: opened, depth: depth}
	opened++
	depth++
	sp.start = time.Now()
	return func() {
		sp.end = time.Now()
		cur.spans = append(cur.spans, sp)
		depth--
		if depth == 0 {
			frames[next] = cur
			next = (next + 1) % len(frames)
			filled = filled || next == 0
		}
	}
}

// retained returns the kept frames, oldest first.
func retained() []frame {
	if !ready {
		return nil
	}
	if !filled {
		return frames[:next]
	}
	return append(slices.Clone(frames[next:]), frames[:next]...)
}

// Stat aggregates one span name over the kept frames.
type Stat struct {
	Name  string
	Count int
	Total time.Duration
	Max   time.Duration
}

// Mean is the average span duration.
func (s Stat) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Summary returns per-name totals, slowest total first.
func Summary() []Stat {
	byName := map[string]*Stat{}
	for _, f := range retained() {
		for _, sp := range f.spans {
			st, ok := byName[sp.name]
			if !ok {
				st = &Stat{Name: sp.name}
				byName[sp.name] = st
			}
			d := sp.end.Sub(sp.start)
			st.Count++
			st.Total += d
			st.Max = max(st.Max, d)
		}
	}
	out := make([]Stat, 0, len(byName))
	for _, st := range byName {
		out = append(out, *st)
	}
	slices.SortFunc(out, func(a, b Stat) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

type ssFile struct {
	Schema   string      `json:"$schema"`
	Shared   ssShared    `json:"shared"`
	Profiles []ssProfile `json:"profiles"`
	Exporter string      `json:"exporter,omitempty"`
}

type ssShared struct {
	Frames []ssFrame `json:"frames"`
}

type ssFrame struct {
	Name string `json:"name"`
}

type ssProfile struct {
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	StartValue int64     `json:"startValue"`
	EndValue   int64     `json:"endValue"`
	Events     []ssEvent `json:"events"`
}

type ssEvent struct {
	Type  string `json:"type"` // "O" or "C"
	At    int64  `json:"at"`   // µs since the first kept frame
	Frame int    `json:"frame"`
}

// WriteSpeedscope writes the kept frames as one evented profile.
func WriteSpeedscope(path string) error {
	kept := retained()
	if len(kept) == 0 {
		return errors.New("profiler: no frames recorded")
	}

	ids := map[string]int{}
	var names []ssFrame
	id := func(name string) int {
		i, ok := ids[name]
		if !ok {
			i = len(names)
			ids[name] = i
			names = append(names, ssFrame{Name: name})
		}
		return i
	}

	base := kept[0].spans[len(kept[0].spans)-1].start // the frame's root closes last
	at := func(t time.Time) int64 { return t.Sub(base).Microseconds() }

	var (
		events []ssEvent
		last   int64
	)
	emit := func(typ string, t int64, frame int) {
		last = max(last, t)
		events = append(events, ssEvent{Type: typ, At: last, Frame: frame})
	}
	for _, f := range kept {
		// Spans are stored as they close; replay them in open order.
		spans := slices.Clone(f.spans)
		slices.SortFunc(spans, func(a, b span) int { return cmp.Compare(a.seq, b.seq) })
		var open []span
		for _, sp := range spans {
			for len(open) > sp.depth {
				top := open[len(open)-1]
				open = open[:len(open)-1]
				emit("C", at(top.end), id(top.name))
			}
			emit("O", at(sp.start), id(sp.name))
			open = append(open, sp)
		}
		for i := len(open) - 1; i >= 0; i-- {
			emit("C", at(open[i].end), id(open[i].name))
		}
	}

	doc := ssFile{
		Schema: "https://www.speedscope.app/file-format-schema.json",
		Shared: ssShared{Frames: names},
		Profiles: []ssProfile{{
			Type:     "evented",
			Name:     "frame loop",
			Unit:     "microseconds",
			EndValue: last,
			Events:   events,
		}},
		Exporter: "trisurf-profiler",
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

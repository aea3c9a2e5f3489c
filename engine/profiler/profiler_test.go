//go:build profile

package profiler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runFrames(n int) {
	for range n {
		step := Start("step")
		Start("pass")()
		Start("events")()
		step()
	}
}

func TestWriteSpeedscope(t *testing.T) {
	Init(2)
	require.True(t, Enabled())
	runFrames(3)

	path := filepath.Join(t.TempDir(), "frames.speedscope.json")
	require.NoError(t, WriteSpeedscope(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc ssFile
	require.NoError(t, json.Unmarshal(b, &doc))
	require.Len(t, doc.Profiles, 1)
	require.Len(t, doc.Shared.Frames, 3)
	assert.Equal(t, "step", doc.Shared.Frames[0].Name)

	// Two kept frames, each step wrapping pass then events.
	evs := doc.Profiles[0].Events
	var got []string
	var last int64
	for _, e := range evs {
		got = append(got, e.Type+doc.Shared.Frames[e.Frame].Name)
		assert.GreaterOrEqual(t, e.At, last)
		last = e.At
	}
	frame := []string{"Ostep", "Opass", "Cpass", "Oevents", "Cevents", "Cstep"}
	assert.Equal(t, append(append([]string{}, frame...), frame...), got)
}

func TestSummary(t *testing.T) {
	Init(4)
	runFrames(6)

	stats := Summary()
	require.Len(t, stats, 3)
	for _, st := range stats {
		assert.Equal(t, 4, st.Count, st.Name)
		assert.GreaterOrEqual(t, st.Max, st.Mean())
	}
}

func TestWriteSpeedscopeEmpty(t *testing.T) {
	Init(4)
	assert.Error(t, WriteSpeedscope(filepath.Join(t.TempDir(), "x.json")))
}

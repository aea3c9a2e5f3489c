//go:build !profile

package profiler

import "time"

// No-op versions when the "profile" build tag is not set.

func Init(n int) {}

func Start(name string) func() { return func() {} }

func Enabled() bool { return false }

type Stat struct {
	Name  string
	Count int
	Total time.Duration
	Max   time.Duration
}

func (s Stat) Mean() time.Duration { return 0 }

func Summary() []Stat { return nil }

func WriteSpeedscope(path string) error { return nil }

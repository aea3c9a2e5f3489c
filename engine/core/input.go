package core

// Input tracks key and pointer state from the events the driver drains.
type Input struct {
	keys           map[Key]bool
	mods           Mod
	mouseX, mouseY float64
}

func NewInput() *Input { return &Input{keys: map[Key]bool{}} }

func (in *Input) Handle(ev Event) {
	switch e := ev.(type) {
	case EventKey:
		in.keys[e.Key] = e.Action != ActionRelease
		in.mods = e.Mods
	case EventMouseMove:
		in.mouseX, in.mouseY = e.X, e.Y
	}
}

func (in *Input) IsKeyDown(k Key) bool      { return in.keys[k] }
func (in *Input) Mods() Mod                 { return in.mods }
func (in *Input) Mouse() (float64, float64) { return in.mouseX, in.mouseY }

package gfx

import (
	"fmt"
	"strings"
)

// TessErrorKind classifies geometry build failures.
type TessErrorKind uint8

const (
	IndexOutOfBounds TessErrorKind = iota + 1
	LengthMismatch
	MissingAttribute
	UnknownAttribute
	DuplicateAttribute
	AttributeSizeMismatch
	MixedLayout
	NoLayout
	LayoutMismatch
)

func (k TessErrorKind) String() string {
	switch k {
	case IndexOutOfBounds:
		return "index out of bounds"
	case LengthMismatch:
		return "attribute length mismatch"
	case MissingAttribute:
		return "missing attribute"
	case UnknownAttribute:
		return "unknown attribute"
	case DuplicateAttribute:
		return "duplicate attribute"
	case AttributeSizeMismatch:
		return "attribute size mismatch"
	case MixedLayout:
		return "both interleaved and deinterleaved data set"
	case NoLayout:
		return "no vertex data set"
	case LayoutMismatch:
		return "vertex layout does not match semantics"
	default:
		return "unknown tess error"
	}
}

// TessError is returned by TessBuilder.Build. No buffer is created when it
// is returned.
type TessError struct {
	Kind      TessErrorKind
	Attribute string // offending attribute, if any
	Position  int    // position in the index array for IndexOutOfBounds
	Value     uint32 // offending index value
	Len       int    // length of the array addressed
}

func (e *TessError) Error() string {
	var b strings.Builder
	b.WriteString("tess: ")
	b.WriteString(e.Kind.String())
	switch e.Kind {
	case IndexOutOfBounds:
		fmt.Fprintf(&b, ": index[%d]=%d, %q has %d elements", e.Position, e.Value, e.Attribute, e.Len)
	case LengthMismatch, AttributeSizeMismatch:
		fmt.Fprintf(&b, ": %q (%d)", e.Attribute, e.Len)
	case MissingAttribute, UnknownAttribute, DuplicateAttribute:
		fmt.Fprintf(&b, ": %q", e.Attribute)
	case LayoutMismatch:
		fmt.Fprintf(&b, ": %q at position %d", e.Attribute, e.Position)
	}
	return b.String()
}

// Is matches sentinels by kind.
func (e *TessError) Is(target error) bool {
	t, ok := target.(*TessError)
	return ok && t.Kind == e.Kind
}

var (
	ErrIndexOutOfBounds = &TessError{Kind: IndexOutOfBounds}
	ErrLengthMismatch   = &TessError{Kind: LengthMismatch}
	ErrMissingAttribute = &TessError{Kind: MissingAttribute}
)

// StageError reports a shader compile or program link failure.
type StageError struct {
	Stage Stage
	Log   string
}

func (e *StageError) Error() string {
	log := strings.TrimRight(e.Log, "\x00 \n")
	if log == "" {
		return fmt.Sprintf("program: %s stage failed", e.Stage)
	}
	return fmt.Sprintf("program: %s stage failed: %s", e.Stage, log)
}

// UniformErrorKind classifies uniform interface failures.
type UniformErrorKind uint8

const (
	TypeMismatch UniformErrorKind = iota + 1
	BadInterface
)

// UniformError reports a uniform interface that does not fit the program.
type UniformError struct {
	Kind  UniformErrorKind
	Name  string
	Field string
	Want  UniformType
	Got   UniformType
	Msg   string
}

func (e *UniformError) Error() string {
	switch e.Kind {
	case TypeMismatch:
		return fmt.Sprintf("program: uniform %q is %s in the shader, interface declares %s", e.Name, e.Got, e.Want)
	default:
		return fmt.Sprintf("program: uniform interface field %s: %s", e.Field, e.Msg)
	}
}

// Is matches sentinels by kind.
func (e *UniformError) Is(target error) bool {
	t, ok := target.(*UniformError)
	return ok && t.Kind == e.Kind
}

var ErrTypeMismatch = &UniformError{Kind: TypeMismatch}

// PassError is returned by Pass.End when the device reported an error while
// the pass was open.
type PassError struct {
	Target Framebuffer
	Err    error
}

func (e *PassError) Error() string { return fmt.Sprintf("pass on %s: %v", e.Target, e.Err) }

func (e *PassError) Unwrap() error { return e.Err }

// DeviceError is a device error raised while building a GPU resource. The
// partially built resource has already been released.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *DeviceError) Unwrap() error { return e.Err }

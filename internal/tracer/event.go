package tracer

// Kind identifies a host runtime trace event.
type Kind uint8

const (
	// KindCall marks entry into a new call frame.
	KindCall Kind = iota + 1
	// KindLine marks an executable line about to run.
	KindLine
	// KindReturn marks exit from the current call frame.
	KindReturn
	// KindException marks an exception propagating through the current frame.
	KindException
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindCall:
		return "call"
	case KindLine:
		return "line"
	case KindReturn:
		return "return"
	case KindException:
		return "exception"
	default:
		return "unknown"
	}
}

// Frame carries the host runtime state behind an event: the identifier of
// the source unit owning the executing code, and the current line number
// within that unit.
type Frame struct {
	Unit string
	Line int
}

// Event is a single notification delivered by the host runtime at a specific
// point of program execution.
type Event struct {
	Kind  Kind
	Frame Frame
}

// Tag is the label under which covered lines of a source unit are recorded.
// The zero value means "do not trace".
type Tag string

// NoTag marks a source unit that is not traced.
const NoTag Tag = ""

// Predicate decides whether, and under which tag, a source unit is traced.
// It is consulted at most once per distinct unit identifier for the lifetime
// of a Tracer; the decision is cached, including a NoTag decision. It must
// be pure with respect to the unit identifier. An error aborts the in-flight
// call event and is not cached.
type Predicate func(unit string, frame Frame) (Tag, error)

// Sink receives covered (tag, line) pairs. Insert must be idempotent: the
// same pair arrives once per execution of that line. It is called on the
// event hot path and should be cheap.
type Sink interface {
	Insert(tag Tag, line int)
}

// Hook is the callback a Host invokes once per trace event. A non-nil error
// tells the host that tracing is unreliable from that point on; the host
// decides whether to stop delivering events.
type Hook func(ev Event) error

// Host is the runtime-side registration slot for a trace hook. A host
// delivers events serially on a single logical control flow, supports at
// most one installed hook at a time, and treats a nil hook as "clear".
type Host interface {
	SetTraceHook(Hook)
}

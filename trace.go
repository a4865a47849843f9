package olang

// Event describes one evaluation step: the node that was just evaluated, the
// scope chain it ran in (innermost frame first), its printed form and the
// value it produced.
type Event struct {
	Seq    int      `json:"seq" yaml:"seq"`
	Kind   NodeKind `json:"kind" yaml:"kind"`
	Span   Span     `json:"pos" yaml:"pos"`
	Scopes []Frame  `json:"scope" yaml:"scope"`
	Code   string   `json:"code" yaml:"code"`
	Value  Value    `json:"value" yaml:"value"`
}

// Tracer receives evaluation events in order.
type Tracer interface {
	Trace(Event)
}

// TracerFunc adapts a function to Tracer.
type TracerFunc func(Event)

func (f TracerFunc) Trace(e Event) { f(e) }

// Recorder is a Tracer that keeps every event.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Trace(e Event) { r.Events = append(r.Events, e) }

// Kinds returns the node kind of each recorded event, in order.
func (r *Recorder) Kinds() []NodeKind {
	out := make([]NodeKind, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind
	}
	return out
}

// Reset drops recorded events.
func (r *Recorder) Reset() { r.Events = r.Events[:0] }

package inline

// BreakCondition tells the line breaker how an inline object relates to
// its neighbouring text.
type BreakCondition uint8

const (
	Neutral     BreakCondition = iota // no preference, Unicode line breaking decides
	CanBreak                          // an explicit break opportunity
	MayNotBreak                       // suppresses breaks, overrides CanBreak
	MustBreak                         // forces a line break
)

func (c BreakCondition) String() string {
	switch c {
	case Neutral:
		return "neutral"
	case CanBreak:
		return "can-break"
	case MayNotBreak:
		return "may-not-break"
	case MustBreak:
		return "must-break"
	}
	return "broken break condition"
}

// Metrics describes the space an inline object occupies. Width and
// height span the object's box, baseline is the distance from the top of
// the box to the text baseline the object sits on. Objects which can be
// rotated into vertical text report SupportsSideways.
type Metrics struct {
	Width            float32
	Height           float32
	Baseline         float32
	SupportsSideways bool
}

// Overhang describes ink extending beyond the object's box, positive
// values reaching outside. A picture with a decorative swash to the left
// reports a positive Left overhang.
type Overhang struct {
	Left   float32
	Top    float32
	Right  float32
	Bottom float32
}

// DrawContext carries the rendering state an object receives when the
// layout delegates drawing back to it.
type DrawContext struct {
	OriginX     float32
	OriginY     float32
	Sideways    bool
	RightToLeft bool
	Effect      interface{} // drawing effect covering the object's position
	Client      interface{} // client context handed to Layout.Draw
}

// Object is a host-supplied embedded object. The layout treats it as a
// single opaque cluster: it never splits the object, wraps it as one
// unit, and reserves the space the object's metrics claim.
//
// Draw receives the renderer which drives the current draw pass. It is
// passed as interface{} so that object implementations decide themselves
// which renderer capabilities they require. Errors returned from any of
// the methods abort the current layout operation.
type Object interface {
	Metrics() (Metrics, error)
	OverhangMetrics() (Overhang, error)
	BreakConditions() (preceding, following BreakCondition, err error)
	Draw(renderer interface{}, ctx DrawContext) error
}

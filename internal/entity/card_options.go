package entity

// Target is the anchor target attribute of a rendered card.
// Values outside the four named constants are passed through unchanged.
type Target string

const (
	TargetSelf   Target = "_self"
	TargetBlank  Target = "_blank"
	TargetTop    Target = "_top"
	TargetParent Target = "_parent"
)

// DefaultTarget is used when no target is configured.
const DefaultTarget = TargetBlank

// CardOptions controls how a single card is rendered.
type CardOptions struct {
	Href        string
	LinkTitle   string
	Target      Target
	ClassPrefix string
}

// TargetOrDefault returns the configured target, or _blank when unset.
func (o CardOptions) TargetOrDefault() Target {
	if o.Target == "" {
		return DefaultTarget
	}
	return o.Target
}

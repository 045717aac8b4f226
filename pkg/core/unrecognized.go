package core

// Reason tags why an entry ended up unrecognized.
type Reason string

const (
	// ReasonUnknown marks a key that matches no canonical field.
	ReasonUnknown Reason = "unknown"
	// ReasonSuperseded marks an alias that lost to a higher-priority spelling.
	ReasonSuperseded Reason = "superseded"
	// ReasonCoercionFailed marks a value that could not be converted to its field type.
	ReasonCoercionFailed Reason = "coercion_failed"
)

// ParseReason maps a persisted reason back to a Reason, defaulting to ReasonUnknown.
func ParseReason(s string) Reason {
	switch Reason(s) {
	case ReasonSuperseded, ReasonCoercionFailed:
		return Reason(s)
	default:
		return ReasonUnknown
	}
}

// UnrecognizedField is an external entry kept verbatim next to the canonical fields.
type UnrecognizedField struct {
	Key    string
	Value  any
	Reason Reason
}

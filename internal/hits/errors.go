package hits

import "fmt"

// HitField identifies which hit record field failed validation.
type HitField int

const (
	FieldColumn HitField = iota
	FieldRow
	FieldToT
	FieldRelativeBCID
)

func (f HitField) String() string {
	switch f {
	case FieldColumn:
		return "column"
	case FieldRow:
		return "row"
	case FieldToT:
		return "tot"
	case FieldRelativeBCID:
		return "relative_bcid"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// ValidationError reports a hit record field outside its hardware bound.
// The offending batch is aborted at the first failing record; counters
// already incremented by earlier records in the batch are kept.
type ValidationError struct {
	Field       HitField
	EventNumber uint64
	Value       uint32 // offending field value
	Limit       uint32 // inclusive upper bound for the field
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid hit in event %d: %s = %d out of range (limit %d)",
		e.EventNumber, e.Field, e.Value, e.Limit)
}

// CorrelationKind classifies event-to-scan-parameter correlation failures.
type CorrelationKind int

const (
	// ParameterIndexOutOfRange means a resolved scan-parameter value has no
	// matching dense index in the parameter value set.
	ParameterIndexOutOfRange CorrelationKind = iota
	// EventOrderingInconsistent means the meta-event-index boundaries cannot
	// place the event (boundary data malformed or missing).
	EventOrderingInconsistent
)

func (k CorrelationKind) String() string {
	switch k {
	case ParameterIndexOutOfRange:
		return "parameter index out of range"
	case EventOrderingInconsistent:
		return "event ordering inconsistent"
	default:
		return fmt.Sprintf("correlation kind(%d)", int(k))
	}
}

// CorrelationError reports a fatal event/scan-parameter correlation failure.
type CorrelationError struct {
	Kind        CorrelationKind
	EventNumber uint64
	Parameter   uint32 // resolved scan-parameter value, if any
}

func (e *CorrelationError) Error() string {
	return fmt.Sprintf("correlation failure at event %d (parameter %d): %s",
		e.EventNumber, e.Parameter, e.Kind)
}

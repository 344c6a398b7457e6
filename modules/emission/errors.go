package emission

// StepErrorKind classifies recoverable step failures.
type StepErrorKind int

const (
	// KindFormat marks input that fails a format rule.
	KindFormat StepErrorKind = iota
	// KindRange marks numeric input outside the allowed range.
	KindRange
	// KindDuplicate marks a name/ticker uniqueness conflict.
	KindDuplicate
	// KindCollaborator marks a store failure surfaced as a generic message.
	KindCollaborator
)

// StepError is a recoverable condition: the workflow reports Message to the
// user, re-prompts the same step and never advances the state pointer.
// It deliberately is a value, not a panic path; only programming errors
// travel as plain errors.
type StepError struct {
	Kind    StepErrorKind
	Message string
}

func (e *StepError) Error() string { return e.Message }

func formatErr(msg string) *StepError {
	return &StepError{Kind: KindFormat, Message: msg}
}

func rangeErr(msg string) *StepError {
	return &StepError{Kind: KindRange, Message: msg}
}

func duplicateErr(msg string) *StepError {
	return &StepError{Kind: KindDuplicate, Message: msg}
}

func collaboratorErr() *StepError {
	return &StepError{Kind: KindCollaborator, Message: textStoreUnavailable}
}

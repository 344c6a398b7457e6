package emission

// Event is a single input to the emission workflow. The variants replace
// string-prefixed callback parsing with an exhaustive switch in
// Workflow.Handle.
type Event interface{ isEvent() }

// StartForm opens a new emission form for a match.
type StartForm struct{ MatchID string }

// SubmitText carries free-text user input for the current step.
type SubmitText struct{ Text string }

// ChooseResource selects the peg resource from the keyboard.
type ChooseResource struct {
	MatchID  string
	Resource string
}

// ConfirmDraft submits the reviewed draft as an emission request.
type ConfirmDraft struct{ MatchID string }

// RestartForm discards the session and starts over.
type RestartForm struct{ MatchID string }

func (StartForm) isEvent()      {}
func (SubmitText) isEvent()     {}
func (ChooseResource) isEvent() {}
func (ConfirmDraft) isEvent()   {}
func (RestartForm) isEvent()    {}

package domain

// Affordance is an action the user may take next.
type Affordance string

const (
	AffordanceAsk          Affordance = "ask"
	AffordanceProvide      Affordance = "provide_answer"
	AffordanceSearchWeb    Affordance = "search_web"
	AffordanceSubmitAnswer Affordance = "submit_answer"
	AffordanceConfirmWeb   Affordance = "confirm_web"
	AffordanceAnotherJoke  Affordance = "another_joke"
	AffordanceDismiss      Affordance = "dismiss"
)

// Snapshot is a read-only copy of the dialog handed to presentation layers.
type Snapshot struct {
	Transcript  []Message          `json:"transcript"`
	Pending     PendingInteraction `json:"pending"`
	Request     RequestState       `json:"request"`
	Affordances []Affordance       `json:"affordances"`
}

// Stage is a shortcut for s.Pending.CurrentStage().
func (s Snapshot) Stage() Stage {
	return s.Pending.CurrentStage()
}

// LastMessage returns the newest transcript entry, if any.
func (s Snapshot) LastMessage() (Message, bool) {
	if len(s.Transcript) == 0 {
		return Message{}, false
	}
	return s.Transcript[len(s.Transcript)-1], true
}

// Allows reports whether a is among the current affordances.
func (s Snapshot) Allows(a Affordance) bool {
	for _, x := range s.Affordances {
		if x == a {
			return true
		}
	}
	return false
}

// AffordancesFor derives the actions offered to the user.
// Nothing is offered while a request is in flight.
func AffordancesFor(pending PendingInteraction, req RequestState, last *Message) []Affordance {
	if req.Busy {
		return []Affordance{}
	}
	out := []Affordance{AffordanceAsk}
	switch pending.CurrentStage() {
	case StageAwaitingOptionChoice:
		if pending.Offers(OptionProvideAnswer) {
			out = append(out, AffordanceProvide)
		}
		if pending.Offers(OptionSearchWeb) {
			out = append(out, AffordanceSearchWeb)
		}
	case StageAwaitingManualAnswer:
		out = append(out, AffordanceSubmitAnswer)
	case StageAwaitingWebConfirmation:
		out = append(out, AffordanceConfirmWeb)
	}
	if pending.IsOpen() {
		out = append(out, AffordanceDismiss)
	}
	if last != nil && last.Role == RoleBot && last.Kind == KindJokePrompt {
		out = append(out, AffordanceAnotherJoke)
	}
	return out
}

package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Stage is the step of the open disambiguation sub-flow.
type Stage string

const (
	StageNone                    Stage = "none"
	StageAwaitingOptionChoice    Stage = "awaiting_option_choice"
	StageAwaitingManualAnswer    Stage = "awaiting_manual_answer"
	StageAwaitingWebConfirmation Stage = "awaiting_web_confirmation"
)

// Option is a follow-up the user may pick when the service cannot answer.
// The values match the Answer Service wire format.
type Option string

const (
	OptionProvideAnswer Option = "provideAnswer"
	OptionSearchWeb     Option = "searchWeb"
)

// AllOptions lists every option in display order.
var AllOptions = []Option{OptionProvideAnswer, OptionSearchWeb}

// ParseOption accepts the wire names as well as their kebab and snake spellings.
func ParseOption(s string) (Option, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.TrimSpace(s)))
	switch norm {
	case "provideanswer":
		return OptionProvideAnswer, nil
	case "searchweb":
		return OptionSearchWeb, nil
	}
	return "", fmt.Errorf("unknown option %q", s)
}

// ParseOptions converts wire strings into options, skipping unknown and duplicate entries.
func ParseOptions(raw []string) []Option {
	out := make([]Option, 0, len(raw))
	for _, r := range raw {
		opt, err := ParseOption(r)
		if err != nil || slices.Contains(out, opt) {
			continue
		}
		out = append(out, opt)
	}
	return out
}

// PendingInteraction is the single open multi-step exchange awaiting user input.
// The zero value means no interaction is open.
type PendingInteraction struct {
	OriginatingQuestion string   `json:"originating_question,omitempty"`
	Stage               Stage    `json:"stage"`
	AvailableOptions    []Option `json:"available_options,omitempty"`
	WebPreviewText      string   `json:"web_preview_text,omitempty"`
}

// OpenInteraction starts a sub-flow awaiting an option choice.
func OpenInteraction(question string, options []Option) PendingInteraction {
	if len(options) == 0 {
		options = AllOptions
	}
	return PendingInteraction{
		OriginatingQuestion: question,
		Stage:               StageAwaitingOptionChoice,
		AvailableOptions:    slices.Clone(options),
	}
}

// CurrentStage returns StageNone for the zero value.
func (p PendingInteraction) CurrentStage() Stage {
	if p.Stage == "" {
		return StageNone
	}
	return p.Stage
}

// IsOpen reports whether a sub-flow is in progress.
func (p PendingInteraction) IsOpen() bool {
	return p.CurrentStage() != StageNone
}

// Offers reports whether opt may be chosen right now.
func (p PendingInteraction) Offers(opt Option) bool {
	return p.CurrentStage() == StageAwaitingOptionChoice && slices.Contains(p.AvailableOptions, opt)
}

// AwaitManualAnswer moves an option-choice interaction to the manual answer stage.
func (p PendingInteraction) AwaitManualAnswer() PendingInteraction {
	return PendingInteraction{
		OriginatingQuestion: p.OriginatingQuestion,
		Stage:               StageAwaitingManualAnswer,
	}
}

// AwaitWebConfirmation moves an option-choice interaction to the web confirmation stage.
func (p PendingInteraction) AwaitWebConfirmation(preview string) PendingInteraction {
	return PendingInteraction{
		OriginatingQuestion: p.OriginatingQuestion,
		Stage:               StageAwaitingWebConfirmation,
		WebPreviewText:      preview,
	}
}

// Valid checks that stage-specific fields are only present in their stage
// and that an open stage always has its originating question.
func (p PendingInteraction) Valid() bool {
	switch p.CurrentStage() {
	case StageNone:
		return p.OriginatingQuestion == "" && len(p.AvailableOptions) == 0 && p.WebPreviewText == ""
	case StageAwaitingOptionChoice:
		return p.OriginatingQuestion != "" && len(p.AvailableOptions) > 0 && p.WebPreviewText == ""
	case StageAwaitingManualAnswer:
		return p.OriginatingQuestion != "" && len(p.AvailableOptions) == 0 && p.WebPreviewText == ""
	case StageAwaitingWebConfirmation:
		return p.OriginatingQuestion != "" && len(p.AvailableOptions) == 0 && p.WebPreviewText != ""
	}
	return false
}

// Clone returns a copy that shares no slices with p.
func (p PendingInteraction) Clone() PendingInteraction {
	p.AvailableOptions = slices.Clone(p.AvailableOptions)
	p.Stage = p.CurrentStage()
	return p
}

// RequestState holds the transient flags of the request in flight.
type RequestState struct {
	Busy      bool   `json:"busy"`
	LastError string `json:"last_error,omitempty"`
}

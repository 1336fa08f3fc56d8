package runner

import (
	"context"
	"errors"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// Action is what a user asked the runner to do.
type Action string

const (
	ActionNone    Action = ""
	ActionText    Action = "text"    // plain text: a question, or the manual answer while one is awaited
	ActionAsk     Action = "ask"     // always a new question
	ActionChoose  Action = "choose"  // pick a disambiguation option
	ActionAnswer  Action = "answer"  // submit the manual answer
	ActionConfirm Action = "confirm" // accept or decline a web preview
	ActionJoke    Action = "joke"
	ActionDismiss Action = "dismiss"
	ActionHelp    Action = "help"
	ActionQuit    Action = "quit"
	ActionUnknown Action = "unknown"
)

// Command is one parsed user input.
type Command struct {
	Action Action        `json:"action"`
	Text   string        `json:"text,omitempty"`
	Option domain.Option `json:"option,omitempty"`
	Accept bool          `json:"accept,omitempty"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Read blocks until the next command. It returns io.EOF when input ends.
	Read(ctx context.Context) (Command, error)

	// Show presents the messages appended since the last call and the
	// resulting dialog state. err is the rejection of the last action, if any.
	Show(ctx context.Context, fresh []domain.Message, snap domain.Snapshot, err error) error

	// SystemOutput presents a meta-message (help, unknown command).
	SystemOutput(ctx context.Context, msg string) error
}

// ParseCommand turns a terminal line into a Command.
// Lines not starting with "/" are plain text; "exit" and "quit" also end the session.
func ParseCommand(line string) Command {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{Action: ActionNone}
	}
	switch strings.ToLower(line) {
	case "exit", "quit":
		return Command{Action: ActionQuit}
	}
	if !strings.HasPrefix(line, "/") {
		return Command{Action: ActionText, Text: line}
	}

	name, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)
	switch strings.ToLower(name) {
	case "ask":
		return Command{Action: ActionAsk, Text: rest}
	case "answer":
		return Command{Action: ActionChoose, Option: domain.OptionProvideAnswer, Text: rest}
	case "web":
		return Command{Action: ActionChoose, Option: domain.OptionSearchWeb}
	case "yes", "y":
		return Command{Action: ActionConfirm, Accept: true}
	case "no", "n":
		return Command{Action: ActionConfirm, Accept: false}
	case "joke":
		return Command{Action: ActionJoke}
	case "cancel", "dismiss":
		return Command{Action: ActionDismiss}
	case "help", "?":
		return Command{Action: ActionHelp}
	case "quit", "exit":
		return Command{Action: ActionQuit}
	}
	return Command{Action: ActionUnknown, Text: line}
}

const helpText = `Type a question and press Enter.
  /answer [text]  teach the answer to the open question
  /web            search the web for it
  /yes, /no       save or discard the web answer
  /joke           another joke
  /cancel         close the open question
  /quit           leave`

// reasonOf returns the text shown to the user for a rejected action.
func reasonOf(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return err.Error()
}

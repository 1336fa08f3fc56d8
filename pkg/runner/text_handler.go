package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/parley/pkg/domain"
)

// ContentRenderer turns bot text into its terminal form (e.g. rendered Markdown).
type ContentRenderer func(string) (string, error)

// LabelStyler decorates the role label printed before each message.
type LabelStyler func(role domain.Role, label string) string

// DefaultTimeFormat is the clock shown next to each message.
const DefaultTimeFormat = "15:04"

// DefaultInputBufferSize is the default number of lines to buffer for input handlers.
const DefaultInputBufferSize = 64

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader     *bufio.Reader
	Writer     io.Writer
	Renderer   ContentRenderer
	Labels     LabelStyler
	TimeFormat string
	Prompt     string
	Sanitizer  Sanitizer

	lastStage domain.Stage
	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerLabels configures the role label styling.
func WithTextHandlerLabels(labels LabelStyler) TextHandlerOption {
	return func(h *TextHandler) {
		h.Labels = labels
	}
}

// WithTextHandlerTimeFormat sets the timestamp layout. An empty layout hides timestamps.
func WithTextHandlerTimeFormat(layout string) TextHandlerOption {
	return func(h *TextHandler) {
		h.TimeFormat = layout
	}
}

// WithTextHandlerPrompt sets the input prompt. An empty prompt hides it.
func WithTextHandlerPrompt(prompt string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = prompt
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader:     bufio.NewReader(r),
		Writer:     w,
		TimeFormat: DefaultTimeFormat,
		Prompt:     "> ",
		Sanitizer:  NewSanitizer(),
		lastStage:  domain.StageNone,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult, DefaultInputBufferSize)
		go h.pump()
	})
}

// pump reads lines in the background so Read can honour ctx.
// It exits once the reader returns an error.
func (h *TextHandler) pump() {
	defer close(h.inputChan)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			return
		}
	}
}

// Read prompts for and parses the next line.
func (h *TextHandler) Read(ctx context.Context) (Command, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return Command{}, ctx.Err()
		default:
			if h.Prompt != "" {
				fmt.Fprint(h.Writer, h.Prompt)
			}
		}

		select {
		case <-ctx.Done():
			return Command{}, ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return Command{}, io.EOF
			}
			if res.err != nil {
				return Command{}, res.err
			}
			clean, err := h.Sanitizer.Clean(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			cmd := ParseCommand(clean)
			if cmd.Action == ActionNone {
				continue
			}
			return cmd, nil
		}
	}
}

// Show prints each new message and a hint of what can be done next.
func (h *TextHandler) Show(ctx context.Context, fresh []domain.Message, snap domain.Snapshot, err error) error {
	if err != nil {
		fmt.Fprintf(h.Writer, "! %s\n", reasonOf(err))
	}
	for _, msg := range fresh {
		if _, werr := fmt.Fprintln(h.Writer, h.format(msg)); werr != nil {
			return werr
		}
	}
	stage := snap.Stage()
	if hint := hintFor(snap); hint != "" && (len(fresh) > 0 || stage != h.lastStage) {
		fmt.Fprintf(h.Writer, "  (%s)\n", hint)
	}
	h.lastStage = stage
	return nil
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintln(h.Writer, msg)
	return err
}

func (h *TextHandler) format(msg domain.Message) string {
	text := msg.Text
	if msg.Role == domain.RoleBot && h.Renderer != nil {
		if rendered, err := h.Renderer(text); err == nil {
			text = strings.TrimSpace(rendered)
		}
	}

	label := "you"
	if msg.Role == domain.RoleBot {
		label = "bot"
	}
	if h.Labels != nil {
		label = h.Labels(msg.Role, label)
	}

	var b strings.Builder
	if h.TimeFormat != "" && !msg.Timestamp.IsZero() {
		fmt.Fprintf(&b, "[%s] ", msg.Timestamp.Format(h.TimeFormat))
	}
	fmt.Fprintf(&b, "%s: %s", label, text)
	return b.String()
}

func hintFor(snap domain.Snapshot) string {
	var hints []string
	for _, a := range snap.Affordances {
		switch a {
		case domain.AffordanceProvide:
			hints = append(hints, "/answer")
		case domain.AffordanceSearchWeb:
			hints = append(hints, "/web")
		case domain.AffordanceSubmitAnswer:
			hints = append(hints, "type your answer")
		case domain.AffordanceConfirmWeb:
			hints = append(hints, "/yes", "/no")
		case domain.AffordanceAnotherJoke:
			hints = append(hints, "/joke")
		case domain.AffordanceDismiss:
			hints = append(hints, "/cancel")
		}
	}
	return strings.Join(hints, " ")
}

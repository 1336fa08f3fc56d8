package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
//
// Each input line is either a Command object ({"action":"choose","option":"searchWeb"}),
// a JSON string, or raw text; the latter two are parsed like terminal input.
// Each output line is a Frame.
type JSONHandler struct {
	Reader    *bufio.Reader
	Writer    io.Writer
	Encoder   *json.Encoder
	Sanitizer Sanitizer
}

// Frame is one JSON-Lines output record.
type Frame struct {
	Messages []domain.Message `json:"messages,omitempty"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
	Error    string           `json:"error,omitempty"`
	System   string           `json:"system,omitempty"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:    bufio.NewReader(r),
		Writer:    w,
		Encoder:   json.NewEncoder(w),
		Sanitizer: NewSanitizer(),
	}
}

// Read decodes the next command. Blank lines are skipped.
// Reads are not interruptible; ctx is checked between lines.
func (h *JSONHandler) Read(ctx context.Context) (Command, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Command{}, err
		}
		line, err := h.Reader.ReadString('\n')
		text := strings.TrimSpace(line)
		if text == "" {
			if err != nil {
				return Command{}, err
			}
			continue
		}

		cmd, perr := h.parse(text)
		if perr != nil {
			if encErr := h.Encoder.Encode(Frame{Error: perr.Error()}); encErr != nil {
				return Command{}, encErr
			}
			if err != nil {
				return Command{}, err
			}
			continue
		}
		if cmd.Action != ActionNone {
			return cmd, nil
		}
		if err != nil {
			return Command{}, err
		}
	}
}

func (h *JSONHandler) parse(text string) (Command, error) {
	if strings.HasPrefix(text, "{") {
		var cmd Command
		if err := json.Unmarshal([]byte(text), &cmd); err != nil {
			return Command{}, err
		}
		clean, err := h.Sanitizer.Clean(cmd.Text)
		if err != nil {
			return Command{}, err
		}
		cmd.Text = clean
		return cmd, nil
	}

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		text = val
	}
	clean, err := h.Sanitizer.Clean(text)
	if err != nil {
		return Command{}, err
	}
	return ParseCommand(clean), nil
}

func (h *JSONHandler) Show(ctx context.Context, fresh []domain.Message, snap domain.Snapshot, err error) error {
	frame := Frame{Messages: fresh, Snapshot: &snap}
	if err != nil {
		frame.Error = reasonOf(err)
	}
	return h.Encoder.Encode(frame)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Frame{System: msg})
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

// Options configures a ChatHandler.
type Options struct {
	Out    io.Writer // answers
	Status io.Writer // model banner, summary, spinner, errors
	In     io.Reader // follow-up input

	Quiet bool
	// Markdown buffers the answer and renders it with glamour when complete.
	Markdown bool

	SpinnerFrames []string
	SpinnerText   string
}

// ChatHandler implements streamers.ChatHandler for terminal I/O.
type ChatHandler struct {
	opts     Options
	reader   *bufio.Reader
	spinner  *spinner
	animate  bool
	renderer *glamour.TermRenderer

	mu           sync.Mutex
	answerBuffer strings.Builder
	wroteAnswer  bool
	endsNewline  bool
}

func NewChatHandler(opts Options) *ChatHandler {
	h := &ChatHandler{
		opts:    opts,
		spinner: newSpinner(opts.Status, opts.SpinnerFrames),
		animate: !opts.Quiet && IsTerminal(opts.Status),
	}
	if opts.In != nil {
		h.reader = bufio.NewReader(opts.In)
	}
	if h.opts.SpinnerText == "" {
		h.opts.SpinnerText = "Thinking..."
	}
	if opts.Markdown {
		h.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
	}
	return h
}

func (h *ChatHandler) Welcome(modelName string) {
	if h.opts.Quiet {
		return
	}
	fmt.Fprintf(h.opts.Status, "Using model: %s\n", modelName)
}

func (h *ChatHandler) Summary(goals, returnFormat, warnings string) {
	if h.opts.Quiet {
		return
	}
	fmt.Fprintf(h.opts.Status, "Goals: %s\nReturn Format: %s\nWarnings: %s\n", goals, returnFormat, warnings)
}

func (h *ChatHandler) Thinking(string) {
	h.mu.Lock()
	h.answerBuffer.Reset()
	h.wroteAnswer = false
	h.endsNewline = false
	h.mu.Unlock()

	if h.animate {
		h.spinner.Start(h.opts.SpinnerText)
	}
}

func (h *ChatHandler) PublishAnswerChunk(chunk string) {
	if chunk == "" {
		return
	}
	h.spinner.Stop()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.opts.Markdown {
		h.answerBuffer.WriteString(chunk)
		return
	}
	io.WriteString(h.opts.Out, chunk)
	h.wroteAnswer = true
	h.endsNewline = strings.HasSuffix(chunk, "\n")
}

func (h *ChatHandler) FinishAnswer() {
	h.spinner.Stop()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.opts.Markdown {
		content := h.answerBuffer.String()
		h.answerBuffer.Reset()
		if content == "" {
			return
		}
		rendered := content
		if h.renderer != nil {
			if out, err := h.renderer.Render(content); err == nil {
				rendered = out
			}
		}
		fmt.Fprintln(h.opts.Out, strings.Trim(rendered, "\n"))
		return
	}

	if h.wroteAnswer && !h.endsNewline {
		fmt.Fprintln(h.opts.Out)
	}
}

// AwaitClientAnswer returns io.EOF when input is exhausted.
func (h *ChatHandler) AwaitClientAnswer(prompt string) (string, error) {
	if h.reader == nil {
		return "", io.EOF
	}
	fmt.Fprintf(h.opts.Status, "%s ", Styled(h.opts.Status, color.FgHiBlack).Sprint(prompt))
	line, err := h.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (h *ChatHandler) Error(err error) {
	h.spinner.Stop()
	fmt.Fprintln(h.opts.Status, Styled(h.opts.Status, color.FgRed).Sprintf("Error: %v", err))
}

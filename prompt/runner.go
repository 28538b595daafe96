package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"

	"ola/config"
	"ola/llm"
	"ola/settings"
	"ola/streamers"
)

// Request is one structured prompt.
type Request struct {
	Goals        string
	ReturnFormat string
	Warnings     string
	Context      string
	// NoThinking strips <think> blocks from the streamed answer.
	NoThinking bool
}

// Runner sends prompts to one provider and model, streaming answers through Handler.
type Runner struct {
	Provider llm.Provider
	Model    string
	Template settings.PromptTemplate
	Hints    string
	Handler  streamers.ChatHandler

	// Clipboard receives the final answer when set.
	Clipboard func(string) error
	// Status receives clipboard confirmations.
	Status io.Writer
	Logger hclog.Logger
}

// ReportedError wraps a failure that the handler has already shown.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }
func (e *ReportedError) Unwrap() error { return e.Err }
func (e *ReportedError) Reported() bool { return true }

func (r *Runner) logger() hclog.Logger {
	if r.Logger == nil {
		return hclog.NewNullLogger()
	}
	return r.Logger
}

func (r *Runner) session() *llm.Session {
	s := llm.NewSession(r.Provider, r.Model)
	s.SetLogger(r.logger())
	return s
}

// Structured formats req, appends hints and streams the answer.
func (r *Runner) Structured(ctx context.Context, req Request) (string, error) {
	text := AppendHints(Format(req.Goals, req.ReturnFormat, req.Warnings, req.Context, r.Template), r.Hints)

	r.Handler.Welcome(r.Model)
	r.Handler.Summary(req.Goals, req.ReturnFormat, req.Warnings)

	out, err := r.send(ctx, r.session(), text, req.NoThinking)
	if err != nil {
		return "", err
	}
	r.copy(out)
	return out, nil
}

// Direct sends prompt as-is, with optional context and hints.
func (r *Runner) Direct(ctx context.Context, prompt, promptContext string, filterThinking bool) (string, error) {
	text := AppendHints(WithContext(prompt, promptContext), r.Hints)

	r.Handler.Welcome(r.Model)

	out, err := r.send(ctx, r.session(), text, filterThinking)
	if err != nil {
		return "", err
	}
	r.copy(out)
	return out, nil
}

// FeedbackPrompt is shown between iterations.
const FeedbackPrompt = "Feedback (empty or 'done' to finish):"

// Iterate runs req, then keeps refining the answer with user feedback in the
// same conversation. It stops after maxTurns answers, on an empty line, on
// "done", or at end of input. The last answer is returned.
func (r *Runner) Iterate(ctx context.Context, req Request, maxTurns int) (string, error) {
	if maxTurns < 1 {
		maxTurns = 1
	}
	text := AppendHints(Format(req.Goals, req.ReturnFormat, req.Warnings, req.Context, r.Template), r.Hints)

	r.Handler.Welcome(r.Model)
	r.Handler.Summary(req.Goals, req.ReturnFormat, req.Warnings)

	s := r.session()
	out, err := r.send(ctx, s, text, req.NoThinking)
	if err != nil {
		return "", err
	}

	for turn := 2; turn <= maxTurns; turn++ {
		feedback, err := r.Handler.AwaitClientAnswer(fmt.Sprintf("[%d/%d] %s", turn, maxTurns, FeedbackPrompt))
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read feedback: %w", err)
		}
		feedback = strings.TrimSpace(feedback)
		if feedback == "" || strings.EqualFold(feedback, "done") {
			break
		}

		r.logger().Debug("refining answer", "turn", turn)
		out, err = r.send(ctx, s, feedback, req.NoThinking)
		if err != nil {
			return "", err
		}
	}

	r.copy(out)
	return out, nil
}

func (r *Runner) send(ctx context.Context, s *llm.Session, text string, filter bool) (string, error) {
	r.Handler.Thinking(text)

	var (
		f   llm.ThinkFilter
		out strings.Builder
	)
	publish := func(chunk string) {
		if chunk == "" {
			return
		}
		out.WriteString(chunk)
		r.Handler.PublishAnswerChunk(chunk)
	}

	resp, err := s.SendStream(ctx, text, func(c llm.StreamChunk) {
		if filter {
			publish(f.Write(c.Content))
			return
		}
		publish(c.Content)
	})
	if err != nil {
		r.Handler.Error(err)
		return "", &ReportedError{Err: err}
	}
	if filter {
		publish(f.Flush())
	}
	r.logger().Debug("answer complete",
		"model", r.Model,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"estimated_cost_usd", config.EstimateCost(r.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens))

	r.Handler.FinishAnswer()
	return out.String(), nil
}

func (r *Runner) copy(out string) {
	if r.Clipboard == nil {
		return
	}
	status := r.Status
	if status == nil {
		status = io.Discard
	}
	if err := r.Clipboard(out); err != nil {
		fmt.Fprintf(status, "Failed to copy to clipboard: %v\n", err)
		return
	}
	fmt.Fprintln(status, "Response copied to clipboard")
}

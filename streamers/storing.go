package streamers

import (
	"context"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"ola/store"
)

// StoringChatHandler is a ChatHandler decorator that writes one session log
// entry per answer, then delegates to an inner handler.
type StoringChatHandler struct {
	inner  ChatHandler
	log    store.Store
	logger hclog.Logger

	mu     sync.Mutex
	entry  store.Entry
	answer strings.Builder
}

// NewStoringChatHandler wraps inner. Fields set on base (command, provider,
// recursion wave) are copied into every entry.
func NewStoringChatHandler(inner ChatHandler, log store.Store, base store.Entry, logger hclog.Logger) *StoringChatHandler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &StoringChatHandler{inner: inner, log: log, entry: base, logger: logger}
}

func (h *StoringChatHandler) Welcome(modelName string) {
	h.mu.Lock()
	h.entry.Model = modelName
	h.mu.Unlock()
	h.inner.Welcome(modelName)
}

func (h *StoringChatHandler) Summary(goals, returnFormat, warnings string) {
	h.mu.Lock()
	h.entry.Goals = goals
	h.entry.ReturnFormat = returnFormat
	h.entry.Warnings = warnings
	h.mu.Unlock()
	h.inner.Summary(goals, returnFormat, warnings)
}

func (h *StoringChatHandler) Thinking(prompt string) {
	h.mu.Lock()
	h.entry.Input = prompt
	h.answer.Reset()
	h.mu.Unlock()
	h.inner.Thinking(prompt)
}

func (h *StoringChatHandler) PublishAnswerChunk(chunk string) {
	h.mu.Lock()
	h.answer.WriteString(chunk)
	h.mu.Unlock()
	h.inner.PublishAnswerChunk(chunk)
}

// FinishAnswer persists the entry. A storage failure is logged, not returned:
// the answer has already been delivered.
func (h *StoringChatHandler) FinishAnswer() {
	h.mu.Lock()
	entry := h.entry
	entry.ID = ""
	entry.Output = h.answer.String()
	h.answer.Reset()
	h.mu.Unlock()

	if err := h.log.Append(context.Background(), entry); err != nil {
		h.logger.Warn("failed to write session log", "error", err)
	}
	h.inner.FinishAnswer()
}

func (h *StoringChatHandler) AwaitClientAnswer(prompt string) (string, error) {
	return h.inner.AwaitClientAnswer(prompt)
}

func (h *StoringChatHandler) Error(err error) {
	h.inner.Error(err)
}

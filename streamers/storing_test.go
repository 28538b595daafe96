package streamers_test

import (
	"context"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ola/store"
	"ola/streamers"
)

type recordingHandler struct {
	events []string
}

func (r *recordingHandler) Welcome(m string)              { r.events = append(r.events, "welcome:"+m) }
func (r *recordingHandler) Summary(g, f, w string)        { r.events = append(r.events, "summary:"+g) }
func (r *recordingHandler) Thinking(p string)             { r.events = append(r.events, "thinking") }
func (r *recordingHandler) PublishAnswerChunk(c string)   { r.events = append(r.events, "chunk:"+c) }
func (r *recordingHandler) FinishAnswer()                 { r.events = append(r.events, "finish") }
func (r *recordingHandler) Error(err error)               { r.events = append(r.events, "error") }
func (r *recordingHandler) AwaitClientAnswer(string) (string, error) {
	return "", io.EOF
}

var _ = Describe("StoringChatHandler", func() {
	var (
		inner *recordingHandler
		log   *store.MemoryStore
		h     *streamers.StoringChatHandler
		wave  = 2
	)

	BeforeEach(func() {
		inner = &recordingHandler{}
		log = store.NewMemoryStore()
		h = streamers.NewStoringChatHandler(inner, log, store.Entry{
			Command:       "prompt",
			Provider:      "openai",
			RecursionWave: &wave,
		}, nil)
	})

	It("delegates every event in order", func() {
		h.Welcome("gpt-5")
		h.Summary("g", "text", "")
		h.Thinking("full prompt")
		h.PublishAnswerChunk("a")
		h.FinishAnswer()

		Expect(inner.events).To(Equal([]string{"welcome:gpt-5", "summary:g", "thinking", "chunk:a", "finish"}))
	})

	It("writes one entry per answer", func() {
		h.Welcome("gpt-5")
		h.Summary("g", "json", "careful")
		h.Thinking("first prompt")
		h.PublishAnswerChunk("Hel")
		h.PublishAnswerChunk("lo")
		h.FinishAnswer()

		h.Thinking("second prompt")
		h.PublishAnswerChunk("again")
		h.FinishAnswer()

		entries, err := log.Recent(context.Background(), 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))

		first := entries[1]
		Expect(first.Command).To(Equal("prompt"))
		Expect(first.Provider).To(Equal("openai"))
		Expect(first.Model).To(Equal("gpt-5"))
		Expect(first.Goals).To(Equal("g"))
		Expect(first.ReturnFormat).To(Equal("json"))
		Expect(first.Warnings).To(Equal("careful"))
		Expect(first.Input).To(Equal("first prompt"))
		Expect(first.Output).To(Equal("Hello"))
		Expect(*first.RecursionWave).To(Equal(2))

		Expect(entries[0].Input).To(Equal("second prompt"))
		Expect(entries[0].Output).To(Equal("again"))
		Expect(entries[0].ID).NotTo(Equal(first.ID))
	})
})

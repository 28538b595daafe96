package prompt_test

import (
	"bytes"
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ola/llm"
	"ola/prompt"
	"ola/settings"
	"ola/store"
	"ola/streamers"
	"ola/streamers/cli"
)

type scriptedProvider struct {
	replies  [][]string
	requests []*llm.ChatRequest
	err      error
}

func (p *scriptedProvider) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	return nil, errors.New("not used")
}

func (p *scriptedProvider) ChatStream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	p.requests = append(p.requests, req)
	var parts []string
	if len(p.replies) > 0 {
		parts, p.replies = p.replies[0], p.replies[1:]
	}
	ch := make(chan llm.StreamChunk, len(parts)+1)
	for _, c := range parts {
		ch <- llm.StreamChunk{Content: c}
	}
	if p.err != nil {
		ch <- llm.StreamChunk{Error: p.err, Done: true}
	} else {
		ch <- llm.StreamChunk{Done: true}
	}
	close(ch)
	return ch, nil
}

var _ = Describe("Runner", func() {
	var (
		provider *scriptedProvider
		out      *bytes.Buffer
		status   *bytes.Buffer
		log      *store.MemoryStore
		runner   *prompt.Runner
		copied   string
	)

	newRunner := func(input string) *prompt.Runner {
		handler := cli.NewChatHandler(cli.Options{Out: out, Status: status, In: strings.NewReader(input)})
		return &prompt.Runner{
			Provider: provider,
			Model:    "test-model",
			Template: settings.PromptTemplate{GoalsPrefix: "G: ", ReturnFormatPrefix: "F: ", WarningsPrefix: "W: "},
			Handler:  streamers.NewStoringChatHandler(handler, log, store.Entry{Command: "prompt"}, nil),
			Status:   status,
		}
	}

	BeforeEach(func() {
		provider = &scriptedProvider{}
		out = &bytes.Buffer{}
		status = &bytes.Buffer{}
		log = store.NewMemoryStore()
		copied = ""
		runner = newRunner("")
	})

	Describe("Structured", func() {
		It("sends the formatted prompt with hints and logs the answer", func() {
			provider.replies = [][]string{{"The ", "answer"}}
			runner.Hints = "prefer tables"

			got, err := runner.Structured(context.Background(), prompt.Request{Goals: "explain", ReturnFormat: "text", Context: "ctx"})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("The answer"))
			Expect(out.String()).To(Equal("The answer\n"))
			Expect(status.String()).To(ContainSubstring("Using model: test-model"))

			sent := provider.requests[0].Messages
			Expect(sent).To(HaveLen(1))
			Expect(sent[0].Content).To(Equal("G: explain\nF: text\nW: \nContext: ctx\nHINTS: prefer tables"))
			Expect(provider.requests[0].Model).To(Equal("test-model"))

			entries, _ := log.Recent(context.Background(), 5)
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Goals).To(Equal("explain"))
			Expect(entries[0].Model).To(Equal("test-model"))
			Expect(entries[0].Output).To(Equal("The answer"))
			Expect(entries[0].OutputLength).To(Equal(len("The answer")))
		})

		It("strips thinking blocks when asked", func() {
			provider.replies = [][]string{{"<think>hidden", "</think>", "shown"}}

			got, err := runner.Structured(context.Background(), prompt.Request{Goals: "g", ReturnFormat: "text", NoThinking: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("shown"))
			Expect(out.String()).NotTo(ContainSubstring("hidden"))
		})

		It("keeps thinking blocks by default", func() {
			provider.replies = [][]string{{"<think>visible</think>", "answer"}}

			got, err := runner.Structured(context.Background(), prompt.Request{Goals: "g", ReturnFormat: "text"})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("<think>visible</think>answer"))
		})

		It("copies the answer to the clipboard", func() {
			provider.replies = [][]string{{"copy me"}}
			runner.Clipboard = func(s string) error { copied = s; return nil }

			_, err := runner.Structured(context.Background(), prompt.Request{Goals: "g"})
			Expect(err).NotTo(HaveOccurred())
			Expect(copied).To(Equal("copy me"))
			Expect(status.String()).To(ContainSubstring("Response copied to clipboard"))
		})

		It("reports clipboard failures without failing", func() {
			provider.replies = [][]string{{"x"}}
			runner.Clipboard = func(string) error { return errors.New("no display") }

			_, err := runner.Structured(context.Background(), prompt.Request{Goals: "g"})
			Expect(err).NotTo(HaveOccurred())
			Expect(status.String()).To(ContainSubstring("Failed to copy to clipboard: no display"))
		})

		It("shows and marks provider failures", func() {
			provider.err = errors.New("rate limited")

			_, err := runner.Structured(context.Background(), prompt.Request{Goals: "g"})
			var reported *prompt.ReportedError
			Expect(errors.As(err, &reported)).To(BeTrue())
			Expect(status.String()).To(ContainSubstring("Error: rate limited"))

			entries, _ := log.Recent(context.Background(), 5)
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("Direct", func() {
		It("sends the prompt with context and no template", func() {
			provider.replies = [][]string{{"ok"}}
			_, err := runner.Direct(context.Background(), "raw question", "extra", false)
			Expect(err).NotTo(HaveOccurred())
			Expect(provider.requests[0].Messages[0].Content).To(Equal("raw question\nContext: extra"))
		})
	})

	Describe("Iterate", func() {
		It("refines the answer until the user is done", func() {
			runner = newRunner("shorter please\ndone\n")
			provider.replies = [][]string{{"long answer"}, {"short"}}

			got, err := runner.Iterate(context.Background(), prompt.Request{Goals: "g", ReturnFormat: "text"}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("short"))
			Expect(provider.requests).To(HaveLen(2))

			second := provider.requests[1].Messages
			Expect(second).To(HaveLen(3))
			Expect(second[1]).To(Equal(llm.Message{Role: llm.RoleAssistant, Content: "long answer"}))
			Expect(second[2].Content).To(Equal("shorter please"))

			entries, _ := log.Recent(context.Background(), 5)
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Input).To(Equal("shorter please"))
		})

		It("stops at the turn limit", func() {
			runner = newRunner("a\nb\nc\n")
			provider.replies = [][]string{{"1"}, {"2"}, {"3"}}

			got, err := runner.Iterate(context.Background(), prompt.Request{Goals: "g"}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("2"))
			Expect(provider.requests).To(HaveLen(2))
		})

		It("stops at end of input", func() {
			provider.replies = [][]string{{"only"}}
			got, err := runner.Iterate(context.Background(), prompt.Request{Goals: "g"}, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("only"))
		})
	})
})

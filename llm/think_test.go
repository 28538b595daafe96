package llm_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ola/llm"
)

var _ = Describe("StripThinking", func() {
	DescribeTable("removes complete blocks",
		func(in, want string) {
			Expect(llm.StripThinking(in)).To(Equal(want))
		},
		Entry("none", "plain answer", "plain answer"),
		Entry("single", "<think>hmm</think>answer", "answer"),
		Entry("multiline", "<think>a\nb\n</think>\nanswer", "\nanswer"),
		Entry("several", "x<think>1</think>y<think>2</think>z", "xyz"),
		Entry("unterminated", "a<think>never closed", "a<think>never closed"),
	)
})

var _ = Describe("ThinkFilter", func() {
	run := func(chunks ...string) string {
		var f llm.ThinkFilter
		var out strings.Builder
		for _, c := range chunks {
			out.WriteString(f.Write(c))
		}
		out.WriteString(f.Flush())
		return out.String()
	}

	It("handles tags split across chunks", func() {
		Expect(run("before <thi", "nk>secret</th", "ink> after")).To(Equal("before  after"))
	})

	It("emits text that only looks like a tag prefix", func() {
		Expect(run("a <th", "e end")).To(Equal("a <the end"))
	})

	It("holds back nothing once the block closes", func() {
		var f llm.ThinkFilter
		Expect(f.Write("<think>x</think>visible")).To(Equal("visible"))
		Expect(f.Flush()).To(BeEmpty())
	})

	It("agrees with StripThinking for every split point", func() {
		input := "lead <think>reason\nmore</think> middle <think>again</think> tail <think>open"
		want := llm.StripThinking(input)
		for i := 0; i <= len(input); i++ {
			for j := i; j <= len(input); j += 7 {
				Expect(run(input[:i], input[i:j], input[j:])).To(Equal(want), "split at %d/%d", i, j)
			}
		}
	})
})

package llm

import (
	"regexp"
	"strings"
)

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinking removes every complete <think>...</think> block.
func StripThinking(s string) string {
	return thinkBlock.ReplaceAllString(s, "")
}

// ThinkFilter removes think blocks from a stream of chunks. Tags may be split
// across chunks. The concatenation of every Write result plus Flush equals
// StripThinking applied to the whole input.
type ThinkFilter struct {
	pending string
	inThink bool
}

// Write consumes a chunk and returns the text that is safe to emit.
func (f *ThinkFilter) Write(chunk string) string {
	f.pending += chunk
	var out strings.Builder

	for {
		if !f.inThink {
			if i := strings.Index(f.pending, thinkOpen); i >= 0 {
				out.WriteString(f.pending[:i])
				f.pending = f.pending[i:]
				f.inThink = true
				continue
			}
			keep := partialSuffix(f.pending, thinkOpen)
			out.WriteString(f.pending[:len(f.pending)-keep])
			f.pending = f.pending[len(f.pending)-keep:]
			return out.String()
		}

		// pending starts with "<think>" and is held until the block closes
		if i := strings.Index(f.pending, thinkClose); i >= 0 {
			f.pending = f.pending[i+len(thinkClose):]
			f.inThink = false
			continue
		}
		return out.String()
	}
}

// Flush returns anything still held back. An unterminated block is emitted
// as-is, matching StripThinking.
func (f *ThinkFilter) Flush() string {
	out := f.pending
	f.pending = ""
	f.inThink = false
	return out
}

// partialSuffix returns the length of the longest suffix of s that is a
// proper prefix of tag.
func partialSuffix(s, tag string) int {
	n := len(tag) - 1
	if n > len(s) {
		n = len(s)
	}
	for ; n > 0; n-- {
		if strings.HasSuffix(s, tag[:n]) {
			return n
		}
	}
	return 0
}

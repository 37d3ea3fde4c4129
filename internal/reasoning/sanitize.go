package reasoning

import (
	"regexp"
	"strings"
)

// scrubRules run in order on fence-free thought text before it reaches the
// subscriber.
var scrubRules = []struct {
	re      *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`\{[^{}]*"direction"[^{}]*\}`), ""}, // leaked decision fragments
	{regexp.MustCompile("`+"), ""},                          // stray code markers
	{regexp.MustCompile(`[ \t]{2,}`), " "},                  // collapse space runs
	{regexp.MustCompile(`\n{3,}`), "\n\n"},                  // collapse blank-line runs
}

// Sanitizer strips fenced blocks and JSON leakage from a thought stream.
// Chunk boundaries are arbitrary, so fence state carries between calls and
// a trailing partial fence marker is held back until the next chunk.
type Sanitizer struct {
	inFence bool
	carry   string
}

// Clean sanitizes one chunk. Text inside ``` fences is dropped entirely.
func (s *Sanitizer) Clean(chunk string) string {
	text := s.carry + chunk
	s.carry = ""

	run := 0
	for run < 3 && run < len(text) && text[len(text)-1-run] == '`' {
		run++
	}
	if run > 0 && run < 3 {
		s.carry = text[len(text)-run:]
		text = text[:len(text)-run]
	}

	var b strings.Builder
	for {
		idx := strings.Index(text, "```")
		if idx < 0 {
			break
		}
		if !s.inFence {
			b.WriteString(text[:idx])
		}
		s.inFence = !s.inFence
		text = text[idx+3:]
	}
	if !s.inFence {
		b.WriteString(text)
	}

	return applyScrubRules(b.String())
}

// Flush returns whatever sanitized text is still held back. Call once at
// stream end; an unterminated fence stays dropped.
func (s *Sanitizer) Flush() string {
	carry := s.carry
	s.carry = ""
	if s.inFence {
		return ""
	}
	return applyScrubRules(carry)
}

func applyScrubRules(text string) string {
	for _, rule := range scrubRules {
		text = rule.re.ReplaceAllString(text, rule.replace)
	}
	return text
}

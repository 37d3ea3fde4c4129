package reasoning

import (
	"strings"
	"testing"
)

func TestSanitizerDropsFencedBlock(t *testing.T) {
	s := &Sanitizer{}

	got := s.Clean("before ```json\n{\"a\":1}\n``` after")

	if got != "before after" {
		t.Errorf("Clean() = %q, want %q", got, "before after")
	}
}

func TestSanitizerCarriesFenceAcrossChunks(t *testing.T) {
	// A fence marker split over chunk boundaries, the way streamed tokens
	// actually arrive.
	s := &Sanitizer{}
	chunks := []string{
		"thinking ",
		"``",
		"`json\n{\"direction\":\"UP\"}\n``",
		"` done",
	}

	var out strings.Builder
	for _, c := range chunks {
		out.WriteString(s.Clean(c))
	}
	out.WriteString(s.Flush())

	got := out.String()
	if strings.Contains(got, "direction") {
		t.Errorf("fenced JSON leaked through: %q", got)
	}
	if strings.Contains(got, "`") {
		t.Errorf("fence markers leaked through: %q", got)
	}
	if !strings.Contains(got, "thinking") || !strings.Contains(got, "done") {
		t.Errorf("surrounding prose lost: %q", got)
	}
}

func TestSanitizerScrubsDecisionLeak(t *testing.T) {
	s := &Sanitizer{}

	got := s.Clean(`I lean bullish {"direction":"UP","confidence":90} overall`)

	if strings.Contains(got, "direction") {
		t.Errorf("decision fragment leaked: %q", got)
	}
	if got != "I lean bullish overall" {
		t.Errorf("Clean() = %q, want %q", got, "I lean bullish overall")
	}
}

func TestSanitizerCollapsesWhitespace(t *testing.T) {
	s := &Sanitizer{}

	got := s.Clean("a\t\t b\n\n\n\nc")

	if got != "a b\n\nc" {
		t.Errorf("Clean() = %q, want %q", got, "a b\n\nc")
	}
}

func TestSanitizerFlushDropsPartialFence(t *testing.T) {
	s := &Sanitizer{}

	if got := s.Clean("text ``"); got != "text " {
		t.Errorf("Clean() = %q, want %q", got, "text ")
	}
	if got := s.Flush(); got != "" {
		t.Errorf("Flush() = %q, want empty", got)
	}
}

func TestSanitizerUnterminatedFenceStaysDropped(t *testing.T) {
	s := &Sanitizer{}

	if got := s.Clean("start ```json rest of the block"); got != "start " {
		t.Errorf("Clean() = %q, want %q", got, "start ")
	}
	if got := s.Clean("still inside"); got != "" {
		t.Errorf("Clean() inside fence = %q, want empty", got)
	}
	if got := s.Flush(); got != "" {
		t.Errorf("Flush() = %q, want empty", got)
	}
}

package processor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type ProcessorConfig struct {
	MinParagraphLength int // paragraphs shorter than this are dropped
	FallbackLength     int // pseudo-paragraph size when no paragraph survives
	StripHTML          bool
}

// Processor extracts labelable paragraphs from raw document text.
// Clinical transcription dumps often carry HTML markup and erratic
// blank-line structure; this normalizes both before labeling.
type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.MinParagraphLength == 0 {
		config.MinParagraphLength = 50
	}
	if config.FallbackLength == 0 {
		config.FallbackLength = 1000
	}

	return Processor{
		config: config,
	}
}

// Process splits text on blank-line boundaries and drops paragraphs
// under the minimum length. If nothing survives, the head of the whole
// text is returned as a single pseudo-paragraph.
func (p *Processor) Process(text string) []string {
	if p.config.StripHTML {
		text = p.CleanHTML(text)
	}

	var paragraphs []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if len(para) > p.config.MinParagraphLength {
			paragraphs = append(paragraphs, para)
		}
	}

	if len(paragraphs) == 0 {
		paragraphs = []string{Truncate(text, p.config.FallbackLength)}
	}

	return paragraphs
}

// CleanHTML strips markup from a cell that looks like HTML, leaving the
// text content. Non-markup text passes through unchanged.
func (p *Processor) CleanHTML(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	return doc.Text()
}

// Truncate cuts text to at most n characters, never splitting a UTF-8
// sequence. Excerpt fields in training components are capped this way,
// matching the serving-time prompt size.
func Truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

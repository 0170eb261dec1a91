// Package narrative turns the generator's Markdown-like output into typed
// display blocks. It recognises three heading levels, single-level list
// items, paragraphs, blank-line spacers and **bold** runs, nothing else.
package narrative

import (
	"fmt"
	"regexp"
	"strings"
)

type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading1
	Heading2
	Heading3
	ListItem
	Spacer
)

func (k BlockKind) String() string {
	switch k {
	case Heading1:
		return "heading1"
	case Heading2:
		return "heading2"
	case Heading3:
		return "heading3"
	case ListItem:
		return "listItem"
	case Spacer:
		return "spacer"
	default:
		return "paragraph"
	}
}

func (k BlockKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *BlockKind) UnmarshalText(text []byte) error {
	for _, kind := range []BlockKind{Paragraph, Heading1, Heading2, Heading3, ListItem, Spacer} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown block kind %q", text)
}

// Run is a span of inline text.
type Run struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// Block is one rendered line.
type Block struct {
	Kind BlockKind `json:"kind"`
	Runs []Run     `json:"runs,omitempty"`
}

// Text concatenates the block's runs without formatting.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

var (
	fenceOpen  = regexp.MustCompile("^```[A-Za-z0-9_-]*[ \\t]*\\n?")
	fenceClose = regexp.MustCompile("\\n?```$")
	quotes     = regexp.MustCompile(`^["']+|["']+$`)
	boldRun    = regexp.MustCompile(`\*\*(.*?)\*\*`)
)

// Clean strips surrounding whitespace, a wrapping code fence and stray
// surrounding quotes from raw generator output. Whitespace uncovered by the
// quote strip is kept, so a line break after an opening quote still yields a
// Spacer.
func Clean(text string) string {
	text = strings.TrimSpace(text)
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")
	return quotes.ReplaceAllString(text, "")
}

// Render classifies each line of the cleaned text into exactly one block.
func Render(text string) []Block {
	text = Clean(text)
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, classify(strings.TrimSpace(line)))
	}
	return blocks
}

func classify(line string) Block {
	switch {
	case line == "":
		return Block{Kind: Spacer}
	case strings.HasPrefix(line, "### "):
		return Block{Kind: Heading3, Runs: SplitInline(line[4:])}
	case strings.HasPrefix(line, "## "):
		return Block{Kind: Heading2, Runs: SplitInline(line[3:])}
	case strings.HasPrefix(line, "# "):
		return Block{Kind: Heading1, Runs: SplitInline(line[2:])}
	case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
		return Block{Kind: ListItem, Runs: SplitInline(line[2:])}
	default:
		return Block{Kind: Paragraph, Runs: SplitInline(line)}
	}
}

// SplitInline splits s on non-greedy **bold** spans. An unterminated "**"
// stays in the plain text.
func SplitInline(s string) []Run {
	matches := boldRun.FindAllStringSubmatchIndex(s, -1)
	runs := make([]Run, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			runs = append(runs, Run{Text: s[last:m[0]]})
		}
		runs = append(runs, Run{Text: s[m[2]:m[3]], Bold: true})
		last = m[1]
	}
	if last < len(s) {
		runs = append(runs, Run{Text: s[last:]})
	}
	return runs
}

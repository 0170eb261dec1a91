package narrative

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plain(s string) Run { return Run{Text: s} }
func bold(s string) Run  { return Run{Text: s, Bold: true} }

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Block
	}{
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "whitespace only",
			input: "  \n\t ",
			want:  nil,
		},
		{
			name:  "mixed document",
			input: "# Title\n\nSome **bold** text\n- item one\n- item two",
			want: []Block{
				{Kind: Heading1, Runs: []Run{plain("Title")}},
				{Kind: Spacer},
				{Kind: Paragraph, Runs: []Run{plain("Some "), bold("bold"), plain(" text")}},
				{Kind: ListItem, Runs: []Run{plain("item one")}},
				{Kind: ListItem, Runs: []Run{plain("item two")}},
			},
		},
		{
			name:  "fenced with language tag",
			input: "```markdown\n# A\n```",
			want:  []Block{{Kind: Heading1, Runs: []Run{plain("A")}}},
		},
		{
			name:  "bare fence",
			input: "```\n## B\n```",
			want:  []Block{{Kind: Heading2, Runs: []Run{plain("B")}}},
		},
		{
			name:  "blank line between paragraphs",
			input: "First.\n\nSecond.",
			want: []Block{
				{Kind: Paragraph, Runs: []Run{plain("First.")}},
				{Kind: Spacer},
				{Kind: Paragraph, Runs: []Run{plain("Second.")}},
			},
		},
		{
			name:  "surrounding quotes stripped",
			input: "\"'### Resumo'\"",
			want:  []Block{{Kind: Heading3, Runs: []Run{plain("Resumo")}}},
		},
		{
			name:  "asterisk bullet and indented lines",
			input: "   * um\n    - dois",
			want: []Block{
				{Kind: ListItem, Runs: []Run{plain("um")}},
				{Kind: ListItem, Runs: []Run{plain("dois")}},
			},
		},
		{
			name:  "hash without space is a paragraph",
			input: "#Titulo",
			want:  []Block{{Kind: Paragraph, Runs: []Run{plain("#Titulo")}}},
		},
		{
			name:  "bold in heading",
			input: "## **Pontos** fortes",
			want:  []Block{{Kind: Heading2, Runs: []Run{bold("Pontos"), plain(" fortes")}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Render() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderOneBlockPerLine(t *testing.T) {
	input := "# A\ntexto\n\n- b\n### c\n\n\nfim"
	assert.Len(t, Render(input), 8)
}

func TestSplitInline(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Run
	}{
		{"plain", "sem destaque", []Run{plain("sem destaque")}},
		{"non-greedy", "**a** e **b**", []Run{bold("a"), plain(" e "), bold("b")}},
		{"unterminated", "isto **não fecha", []Run{plain("isto **não fecha")}},
		{"adjacent", "**a****b**", []Run{bold("a"), bold("b")}},
		{"empty", "", []Run{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, SplitInline(tt.input)); diff != "" {
				t.Errorf("SplitInline() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "# A", Clean("  ```markdown\n# A\n```  "))
	assert.Equal(t, "texto", Clean(`"texto"`))
	assert.Equal(t, "", Clean("```"))
	assert.Equal(t, "\n# A", Clean("\"\n# A\""))
}

func TestRenderKeepsLineBreakAfterQuote(t *testing.T) {
	got := Render("\"\n# A\"")
	want := []Block{
		{Kind: Spacer},
		{Kind: Heading1, Runs: []Run{{Text: "A"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestBlockJSON(t *testing.T) {
	blocks := Render("# A\n\nx **y**")
	data, err := json.Marshal(blocks)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"kind":"heading1","runs":[{"text":"A"}]},
		{"kind":"spacer"},
		{"kind":"paragraph","runs":[{"text":"x "},{"text":"y","bold":true}]}
	]`, string(data))

	var back []Block
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, blocks, back)
	assert.Equal(t, "x y", back[2].Text())
}

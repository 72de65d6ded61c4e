package portabletext

import (
	"encoding/json"
	"strings"
	"testing"
)

func textBlock(texts ...string) Block {
	b := Block{Type: TypeBlock, Style: "normal"}
	for _, t := range texts {
		b.Children = append(b.Children, Span{Type: TypeSpan, Text: t})
	}
	return b
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestEstimateReadingTime(t *testing.T) {
	tests := []struct {
		name string
		body Body
		want int
	}{
		{"nil body", nil, 1},
		{"empty body", Body{}, 1},
		{"image only", Body{{Type: "image"}}, 1},
		{"one word", Body{textBlock("hello")}, 1},
		{"exactly 200 words", Body{textBlock(words(200))}, 1},
		{"201 words", Body{textBlock(words(201))}, 2},
		{"400 words", Body{textBlock(words(400))}, 2},
		{"401 words", Body{textBlock(words(401))}, 3},
		{"split across blocks", Body{textBlock(words(300)), {Type: "image"}, textBlock(words(300))}, 3},
		{"non-span children ignored", Body{{
			Type: TypeBlock,
			Children: []Span{
				{Type: "inlineImage", Text: words(1000)},
				{Type: TypeSpan, Text: "short"},
			},
		}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateReadingTime(tt.body); got != tt.want {
				t.Errorf("EstimateReadingTime() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEstimateReadingTime_Monotonic(t *testing.T) {
	for _, n := range []int{0, 1, 150, 199, 200, 250, 999, 4000} {
		body := Body{textBlock(words(n))}
		doubled := Body{textBlock(words(n), " ", words(n))}

		if EstimateReadingTime(doubled) < EstimateReadingTime(body) {
			t.Errorf("doubling %d words decreased reading time", n)
		}
	}
}

func TestPlainText(t *testing.T) {
	body := Body{
		textBlock("Hello ", "world"),
		{Type: "image"},
		textBlock("Second", " block"),
	}

	want := "Hello world Second block"
	if got := PlainText(body); got != want {
		t.Errorf("PlainText() = %q, want %q", got, want)
	}
}

func TestPlainText_SpansJoinedWithoutSeparator(t *testing.T) {
	body := Body{textBlock("bold", "italic")}
	if got := WordCount(body); got != 1 {
		t.Errorf("WordCount() = %d, want 1", got)
	}
}

func TestEstimateReadingTimeJSON(t *testing.T) {
	long := `[{"_type":"block","children":[{"_type":"span","text":"` + words(400) + `"}]}]`

	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"null", `null`, 1},
		{"empty input", ``, 1},
		{"object instead of array", `{"_type":"block"}`, 1},
		{"string", `"text"`, 1},
		{"empty array", `[]`, 1},
		{"400 words", long, 2},
		{"inline object beside span", `[{"_type":"block","children":[{"_type":"span","text":"` + words(400) + `"},{"_type":"footnote","_key":"f1","text":[{"_type":"block","children":[{"_type":"span","text":"note"}]}]}]}]`, 2},
		{"malformed node skipped", `[42, {"_type":"block","children":[{"_type":"span","text":"` + words(201) + `"}]}]`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateReadingTimeJSON([]byte(tt.raw)); got != tt.want {
				t.Errorf("EstimateReadingTimeJSON() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBodyDecode(t *testing.T) {
	raw := `[
		{"_type":"block","_key":"a","style":"h2","children":[{"_type":"span","text":"Title","marks":["strong"]}],"markDefs":[]},
		{"_type":"image","_key":"b","asset":{"_ref":"image-abc-10x10-png"}}
	]`

	var body Body
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("len(body) = %d, want 2", len(body))
	}
	if !body[0].IsText() || body[0].Text() != "Title" {
		t.Errorf("first block = %+v", body[0])
	}
	if body[1].IsText() || body[1].Text() != "" {
		t.Errorf("image node should carry no text: %+v", body[1])
	}
}

func TestBodyDecode_UnknownNodesStayOpaque(t *testing.T) {
	footnote := `{"_type":"footnote","_key":"f1","text":[{"_type":"block","children":[{"_type":"span","text":"see annex"}]}]}`
	embed := `{"_type":"codeEmbed","_key":"c1","children":"not an array","level":"deep"}`
	raw := `[
		{"_type":"block","_key":"a","children":[{"_type":"span","text":"Gaming"},` + footnote + `,{"_type":"span","text":" compliance"}]},
		` + embed + `,
		{"_type":"block","_key":"b","children":[42]}
	]`

	var body Body
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if len(body) != 3 {
		t.Fatalf("len(body) = %d, want 3", len(body))
	}
	if got := body[0].Text(); got != "Gaming compliance" {
		t.Errorf("Text() = %q, want %q", got, "Gaming compliance")
	}
	if body[0].Children[1].Type != "footnote" || body[0].Children[1].Key != "f1" {
		t.Errorf("footnote child = %+v", body[0].Children[1])
	}
	if body[1].IsText() || body[1].Type != "codeEmbed" {
		t.Errorf("embed node = %+v", body[1])
	}
	if got := PlainText(body); got != "Gaming compliance " {
		t.Errorf("PlainText() = %q", got)
	}

	out, err := json.Marshal(body[0].Children[1])
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(out) != footnote {
		t.Errorf("footnote re-encoded as %s", out)
	}
	out, err = json.Marshal(body[1])
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(out) != embed {
		t.Errorf("embed re-encoded as %s", out)
	}
}

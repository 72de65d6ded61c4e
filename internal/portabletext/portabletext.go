// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package portabletext models Sanity portable text bodies and derives
// plain text and reading time estimates from them.
package portabletext

import (
	"encoding/json"
	"strings"
)

// Node type discriminants that contribute text.
const (
	TypeBlock = "block"
	TypeSpan  = "span"
)

// WordsPerMinute is the reading speed used by EstimateReadingTime.
const WordsPerMinute = 200

// Span is a child node of a block. Only span children carry text; any
// other child is kept as its raw JSON and never decoded further.
type Span struct {
	Type  string   `json:"_type"`
	Key   string   `json:"_key,omitempty"`
	Text  string   `json:"text,omitempty"`
	Marks []string `json:"marks,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON decodes span fields only when _type is "span".
func (s *Span) UnmarshalJSON(data []byte) error {
	type span Span
	typ, key, ok := peekType(data)
	if ok && typ == TypeSpan {
		var v span
		if err := json.Unmarshal(data, &v); err == nil {
			*s = Span(v)
			return nil
		}
	}
	*s = Span{Type: typ, Key: key, raw: clone(data)}
	return nil
}

// MarshalJSON writes non-span children back unchanged.
func (s Span) MarshalJSON() ([]byte, error) {
	if s.raw != nil {
		return s.raw, nil
	}
	type span Span
	return json.Marshal(span(s))
}

// Block is a top-level node of a body. Non-text nodes (images, embeds)
// keep their raw JSON and decode into a Block with only _type and _key.
type Block struct {
	Type     string            `json:"_type"`
	Key      string            `json:"_key,omitempty"`
	Style    string            `json:"style,omitempty"`
	ListItem string            `json:"listItem,omitempty"`
	Level    int               `json:"level,omitempty"`
	Children []Span            `json:"children,omitempty"`
	MarkDefs []json.RawMessage `json:"markDefs,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON decodes block fields only when _type is "block". A text
// block whose fields do not decode is kept opaque like any other node.
func (b *Block) UnmarshalJSON(data []byte) error {
	type block Block
	typ, key, ok := peekType(data)
	if ok && typ == TypeBlock {
		var v block
		if err := json.Unmarshal(data, &v); err == nil {
			*b = Block(v)
			return nil
		}
	}
	*b = Block{Type: typ, Key: key, raw: clone(data)}
	return nil
}

// MarshalJSON writes non-text nodes back unchanged.
func (b Block) MarshalJSON() ([]byte, error) {
	if b.raw != nil {
		return b.raw, nil
	}
	type block Block
	return json.Marshal(block(b))
}

// peekType reads the _type and _key of a node. ok is false when data is
// not an object with string discriminants.
func peekType(data []byte) (typ, key string, ok bool) {
	var head struct {
		Type string `json:"_type"`
		Key  string `json:"_key"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", "", false
	}
	return head.Type, head.Key, true
}

func clone(data []byte) json.RawMessage {
	if len(data) == 0 {
		return nil
	}
	return append(json.RawMessage(nil), data...)
}

// IsText reports whether the node is a text block.
func (b Block) IsText() bool {
	return b.Type == TypeBlock
}

// Text returns the concatenated text of the block's span children.
func (b Block) Text() string {
	if !b.IsText() {
		return ""
	}
	var sb strings.Builder
	for _, c := range b.Children {
		if c.Type == TypeSpan {
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

// Body is an ordered sequence of portable text nodes.
type Body []Block

// PlainText joins the text of all text blocks with a single space.
func PlainText(body Body) string {
	parts := make([]string, 0, len(body))
	for _, b := range body {
		if b.IsText() {
			parts = append(parts, b.Text())
		}
	}
	return strings.Join(parts, " ")
}

// WordCount approximates the number of words in the body.
func WordCount(body Body) int {
	return len(strings.Fields(PlainText(body)))
}

// EstimateReadingTime returns the minutes needed to read body, rounded up.
// The result is never less than 1, including for nil or text-free bodies.
func EstimateReadingTime(body Body) int {
	words := WordCount(body)
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// EstimateReadingTimeJSON estimates reading time from an undecoded body.
// Anything that is not a JSON array of nodes yields 1. Nodes that are not
// text blocks are ignored.
func EstimateReadingTimeJSON(raw []byte) int {
	var body Body
	if err := json.Unmarshal(raw, &body); err != nil {
		return 1
	}
	return EstimateReadingTime(body)
}

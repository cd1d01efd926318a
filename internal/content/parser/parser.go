// Package parser turns the markdown-like text produced by the generation service into ordered,
// typed content sections.
//
// Header detection is lexical: any line whose trimmed form starts with '#' opens a new section,
// regardless of heading level or surrounding code fences.
package parser

import (
	"strings"
	"unicode"
)

const (
	heroTitle     = "Hero"
	heroType      = "hero"
	fallbackTitle = "Content"
)

// Block is one parsed section before ids and image prompts are assigned.
type Block struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

type accumulator struct {
	title string
	typ   string
	body  strings.Builder
}

func (a *accumulator) block() Block {
	return Block{Title: a.title, Type: a.typ, Content: strings.TrimSpace(a.body.String())}
}

// Parse splits raw into blocks in source order. It never fails; an empty result means nothing
// usable was found and the caller decides how to report it.
func Parse(raw string) []Block {
	var (
		out []Block
		cur *accumulator
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "#"):
			if cur != nil {
				out = append(out, cur.block())
			}
			title := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			cur = &accumulator{title: title, typ: TypeFromTitle(title)}
		case cur != nil:
			cur.body.WriteString(line)
			cur.body.WriteByte('\n')
		case trimmed == "":
			// blank lines before any content do not open the hero section
		default:
			cur = &accumulator{title: heroTitle, typ: heroType}
			cur.body.WriteString(line)
			cur.body.WriteByte('\n')
		}
	}

	if cur != nil {
		b := cur.block()
		if b.Content != "" || len(out) == 0 {
			out = append(out, b)
		}
	}

	if len(out) == 0 {
		if content := strings.TrimSpace(raw); content != "" {
			out = append(out, Block{Title: fallbackTitle, Type: heroType, Content: content})
		}
	}
	return out
}

// TypeFromTitle lowercases title and joins its whitespace-separated words with single hyphens.
// The mapping is lossy; equal types are allowed and told apart by positional ids.
func TypeFromTitle(title string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(title), unicode.IsSpace), "-")
}

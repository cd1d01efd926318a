package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/yungbote/pagehub-backend/internal/domain/site"
)

// Page describes the document around the sections.
type Page struct {
	Title  string
	Domain string
}

// Renderer turns WebsiteContent into a standalone HTML page. Section bodies are treated as markdown and
// sanitized, so content produced by the model cannot inject script.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	tmpl   *template.Template
}

func New() *Renderer {
	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
		tmpl:   template.Must(template.New("page").Parse(pageTemplate)),
	}
}

type sectionView struct {
	ID          string
	Type        string
	Title       string
	ImagePrompt string
	Class       string
	Body        template.HTML
}

type pageView struct {
	Title    string
	Domain   string
	Parallax bool
	Sections []sectionView
}

func (r *Renderer) Render(wc site.WebsiteContent, page Page) ([]byte, error) {
	view := pageView{
		Title:    strings.TrimSpace(page.Title),
		Domain:   strings.TrimSpace(page.Domain),
		Parallax: wc.Parallax,
		Sections: make([]sectionView, 0, len(wc.Sections)),
	}
	if view.Title == "" && len(wc.Sections) > 0 {
		view.Title = wc.Sections[0].Title
	}

	for i, s := range wc.Sections {
		body, err := r.markdown(s.Content)
		if err != nil {
			return nil, fmt.Errorf("render section %s: %w", s.ID, err)
		}
		class := "section section-" + s.Type
		if i == 0 {
			class += " hero"
		}
		view.Sections = append(view.Sections, sectionView{
			ID:          s.ID,
			Type:        s.Type,
			Title:       s.Title,
			ImagePrompt: s.ImagePrompt,
			Class:       class,
			Body:        body,
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{- if .Domain}}
<link rel="canonical" href="https://{{.Domain}}/">
{{- end}}
<style>
body{margin:0;font-family:system-ui,sans-serif;line-height:1.6;color:#1f2937}
.section{padding:4rem 1.5rem;max-width:64rem;margin:0 auto}
.hero{min-height:60vh;display:flex;flex-direction:column;justify-content:center}
body.parallax .section{background-attachment:fixed;background-size:cover}
</style>
</head>
<body{{if .Parallax}} class="parallax"{{end}}>
{{- range .Sections}}
<section id="{{.ID}}" class="{{.Class}}" data-section-type="{{.Type}}" data-ai-hint="{{.ImagePrompt}}">
<h2>{{.Title}}</h2>
{{.Body}}
</section>
{{- end}}
</body>
</html>
`

// Package demo renders canned generation results used when a live provider
// call is impossible (no API key) or has failed.
package demo

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var catalogueYAML []byte

type catalogue struct {
	Defaults struct {
		Audience string `yaml:"audience"`
		Tone     string `yaml:"tone"`
		Style    string `yaml:"style"`
	} `yaml:"defaults"`
	SubKeywords []string       `yaml:"subkeywords"`
	Title       string         `yaml:"title"`
	Article     string         `yaml:"article"`
	Sections    map[string]int `yaml:"sections"`
}

// ArticleData parameterizes the demo article
type ArticleData struct {
	Topic      string
	SubKeyword string
	Audience   string
	Tone       string
	Style      string
	Length     string
	Keywords   []string
}

// Generator renders demo content from the embedded catalogue
type Generator struct {
	cat         catalogue
	subkeywords []*template.Template
	title       *template.Template
	article     *template.Template
}

// New parses the embedded catalogue
func New() (*Generator, error) {
	return parse(catalogueYAML)
}

// MustNew is New for package-level initialization; the catalogue is compiled in
func MustNew() *Generator {
	g, err := New()
	if err != nil {
		panic(err)
	}
	return g
}

func parse(raw []byte) (*Generator, error) {
	var cat catalogue
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("failed to decode demo catalogue: %w", err)
	}
	if len(cat.SubKeywords) == 0 || strings.TrimSpace(cat.Article) == "" {
		return nil, fmt.Errorf("demo catalogue is incomplete")
	}

	funcs := template.FuncMap{"inc": func(i int) int { return i + 1 }}
	g := &Generator{cat: cat}

	for i, s := range cat.SubKeywords {
		t, err := template.New(fmt.Sprintf("subkeyword-%d", i)).Parse(s)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sub-keyword template %d: %w", i, err)
		}
		g.subkeywords = append(g.subkeywords, t)
	}

	var err error
	if g.title, err = template.New("title").Parse(cat.Title); err != nil {
		return nil, fmt.Errorf("failed to parse title template: %w", err)
	}
	if g.article, err = template.New("article").Funcs(funcs).Parse(cat.Article); err != nil {
		return nil, fmt.Errorf("failed to parse article template: %w", err)
	}
	return g, nil
}

// SubKeywords returns the canned sub-keyword list for topic
func (g *Generator) SubKeywords(topic string) []string {
	topic = strings.TrimSpace(topic)
	data := struct{ Topic string }{Topic: topic}

	out := make([]string, 0, len(g.subkeywords))
	for _, t := range g.subkeywords {
		var buf bytes.Buffer
		if err := t.Execute(&buf, data); err != nil {
			continue
		}
		out = append(out, buf.String())
	}
	return out
}

// Article returns a canned title and markdown body. The body is never empty.
func (g *Generator) Article(data ArticleData) (string, string) {
	data = g.withDefaults(data)

	view := struct {
		ArticleData
		Sections []string
	}{ArticleData: data, Sections: g.sections(data)}

	var title, body bytes.Buffer
	if err := g.title.Execute(&title, view); err != nil {
		title.Reset()
		title.WriteString(data.Topic)
	}
	if err := g.article.Execute(&body, view); err != nil || strings.TrimSpace(body.String()) == "" {
		body.Reset()
		fmt.Fprintf(&body, "# %s\n\n%s에 대한 데모 콘텐츠입니다.\n", data.Topic, data.Topic)
	}
	return strings.TrimSpace(title.String()), body.String()
}

func (g *Generator) withDefaults(data ArticleData) ArticleData {
	data.Topic = strings.TrimSpace(data.Topic)
	data.SubKeyword = strings.TrimSpace(data.SubKeyword)
	if data.Audience = strings.TrimSpace(data.Audience); data.Audience == "" {
		data.Audience = g.cat.Defaults.Audience
	}
	if data.Tone = strings.TrimSpace(data.Tone); data.Tone == "" {
		data.Tone = g.cat.Defaults.Tone
	}
	if data.Style = strings.TrimSpace(data.Style); data.Style == "" {
		data.Style = g.cat.Defaults.Style
	}
	if data.Length == "" {
		data.Length = "medium"
	}
	return data
}

// sections picks section headings from the sub-keyword list, skipping the
// one already used in the title
func (g *Generator) sections(data ArticleData) []string {
	n, ok := g.cat.Sections[data.Length]
	if !ok || n <= 0 {
		n = 3
	}
	var out []string
	for _, s := range g.SubKeywords(data.Topic) {
		if len(out) == n {
			break
		}
		if s == data.SubKeyword {
			continue
		}
		out = append(out, s)
	}
	return out
}

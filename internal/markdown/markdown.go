// Package markdown renders blog bodies and extracts the plain-text facts
// (excerpt, reading time, front matter) stored next to them.
package markdown

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

const (
	wordsPerMinute = 200
	// DefaultExcerptLength is the rune budget used when a post has no explicit excerpt.
	DefaultExcerptLength = 200
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		meta.Meta,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(true),
			),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// Document is a rendered Markdown source.
type Document struct {
	HTML        string
	Plain       string
	ReadingTime int
	Meta        FrontMatter
}

// FrontMatter holds the recognised YAML header fields of an imported post.
type FrontMatter struct {
	Title      string
	Slug       string
	Category   string
	Excerpt    string
	CoverImage string
	Tags       []string
	Date       time.Time
}

// Parse renders src and collects its plain text and front matter.
func Parse(src []byte) (Document, error) {
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, src, root); err != nil {
		return Document{}, fmt.Errorf("markdown: render: %w", err)
	}

	plain := plainText(root, src)
	return Document{
		HTML:        buf.String(),
		Plain:       plain,
		ReadingTime: ReadingTime(plain),
		Meta:        frontMatter(meta.Get(ctx)),
	}, nil
}

// Render converts Markdown to HTML.
func Render(src string) (string, error) {
	doc, err := Parse([]byte(src))
	if err != nil {
		return "", err
	}
	return doc.HTML, nil
}

// Excerpt returns at most maxRunes of plain, cut on a word boundary when one
// exists, with an ellipsis appended when shortened.
func Excerpt(plain string, maxRunes int) string {
	plain = strings.Join(strings.Fields(plain), " ")
	if maxRunes <= 0 || utf8.RuneCountInString(plain) <= maxRunes {
		return plain
	}

	runes := []rune(plain)
	cut := string(runes[:maxRunes])
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// ReadingTime estimates minutes to read plain at a fixed pace, never less than one.
func ReadingTime(plain string) int {
	words := len(strings.Fields(plain))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

func plainText(root ast.Node, src []byte) string {
	var out strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				out.WriteString(" ")
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			out.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				out.WriteString(" ")
			}
		case *ast.String:
			out.Write(node.Value)
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				out.Write(line.Value(src))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(out.String()), " ")
}

func frontMatter(values map[string]interface{}) FrontMatter {
	if len(values) == 0 {
		return FrontMatter{}
	}

	fm := FrontMatter{
		Title:      stringValue(values, "title"),
		Slug:       stringValue(values, "slug"),
		Category:   stringValue(values, "category"),
		Excerpt:    firstNonEmpty(stringValue(values, "excerpt"), stringValue(values, "description")),
		CoverImage: firstNonEmpty(stringValue(values, "coverImage"), stringValue(values, "cover")),
		Tags:       stringSlice(values["tags"]),
	}

	switch v := values["date"].(type) {
	case time.Time:
		fm.Date = v.UTC()
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				fm.Date = parsed.UTC()
				break
			}
		}
	}
	return fm
}

func stringValue(values map[string]interface{}, key string) string {
	if v, ok := values[key]; ok && v != nil {
		return strings.TrimSpace(fmt.Sprint(v))
	}
	return ""
}

func stringSlice(v interface{}) []string {
	switch items := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return items
	case string:
		var out []string
		for _, part := range strings.Split(items, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

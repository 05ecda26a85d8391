package indexer

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// DefaultMaxChunkRunes bounds the size of every chunk.
const DefaultMaxChunkRunes = 1000

// Chunker splits show documents into heading-scoped chunks.
type Chunker struct {
	md       goldmark.Markdown
	maxRunes int
}

// NewChunker creates a Chunker. maxRunes <= 0 selects DefaultMaxChunkRunes.
func NewChunker(maxRunes int) *Chunker {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxChunkRunes
	}
	return &Chunker{md: goldmark.New(), maxRunes: maxRunes}
}

type section struct {
	path   string
	blocks []string
}

// Chunk parses content and returns the chunked document. Markdown files are
// split at headings; other files at blank lines.
func (c *Chunker) Chunk(source string, content []byte) Document {
	doc := Document{Source: source}

	var sections []section
	switch strings.ToLower(filepath.Ext(source)) {
	case ".md", ".markdown":
		doc.Title, sections = c.markdownSections(content)
	default:
		sections = []section{{blocks: paragraphs(string(content))}}
	}
	if doc.Title == "" {
		doc.Title = titleFromFilename(source)
	}

	for _, s := range sections {
		for _, t := range c.pack(s.blocks) {
			doc.Chunks = append(doc.Chunks, Chunk{
				Index:       len(doc.Chunks),
				HeadingPath: s.path,
				Text:        t,
			})
		}
	}
	return doc
}

func (c *Chunker) markdownSections(content []byte) (string, []section) {
	root := c.md.Parser().Parse(text.NewReader(content))

	type heading struct {
		level int
		text  string
	}
	var (
		title, firstHeading string
		stack               []heading
		sections            []section
		current             section
	)

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			if t := blockText(n, content); t != "" {
				current.blocks = append(current.blocks, t)
			}
			continue
		}

		htext := blockText(h, content)
		if firstHeading == "" {
			firstHeading = htext
		}
		if h.Level == 1 && title == "" {
			title = htext
		}

		if len(current.blocks) > 0 {
			sections = append(sections, current)
		}
		for len(stack) > 0 && stack[len(stack)-1].level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, heading{level: h.Level, text: htext})

		names := make([]string, len(stack))
		for i, s := range stack {
			names[i] = s.text
		}
		current = section{path: strings.Join(names, " > ")}
	}
	if len(current.blocks) > 0 {
		sections = append(sections, current)
	}

	if title == "" {
		title = firstHeading
	}
	return title, sections
}

// blockText returns the plain text of a block node. Code is kept verbatim,
// raw HTML and thematic breaks are dropped.
func blockText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			breakLine(&b)
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock, *ast.RawHTML, *ast.ThematicBreak:
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			breakLine(&b)
			b.WriteString("- ")
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(v.Value)
		default:
			if node != n && node.Type() == ast.TypeBlock {
				breakLine(&b)
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func breakLine(b *strings.Builder) {
	s := b.String()
	if s != "" && !strings.HasSuffix(s, "\n") && !strings.HasSuffix(s, "- ") {
		b.WriteByte('\n')
	}
}

func paragraphs(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(s, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// pack joins blocks into chunks of at most maxRunes, splitting oversized blocks.
func (c *Chunker) pack(blocks []string) []string {
	var (
		chunks []string
		cur    strings.Builder
		runes  int
	)
	flush := func() {
		if runes > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			runes = 0
		}
	}

	for _, block := range blocks {
		for _, piece := range splitText(block, c.maxRunes) {
			n := utf8.RuneCountInString(piece)
			if runes > 0 && runes+2+n > c.maxRunes {
				flush()
			}
			if runes > 0 {
				cur.WriteString("\n\n")
				runes += 2
			}
			cur.WriteString(piece)
			runes += n
		}
	}
	flush()
	return chunks
}

// splitText cuts s into pieces of at most max runes, preferring paragraph,
// line, sentence and word boundaries in that order.
func splitText(s string, max int) []string {
	var out []string
	runes := []rune(s)
	for len(runes) > max {
		window := string(runes[:max])
		cut := max
		for _, sep := range []string{"\n\n", "\n", ". ", " "} {
			if i := strings.LastIndex(window, sep); i > 0 {
				cut = utf8.RuneCountInString(window[:i+len(sep)])
				break
			}
		}
		if piece := strings.TrimSpace(string(runes[:cut])); piece != "" {
			out = append(out, piece)
		}
		runes = runes[cut:]
	}
	if piece := strings.TrimSpace(string(runes)); piece != "" {
		out = append(out, piece)
	}
	return out
}

// titleFromFilename turns "season-1/pickle_rick.md" into "Pickle Rick".
func titleFromFilename(source string) string {
	name := filepath.Base(source)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)

	words := strings.Fields(name)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

package export

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/seoforge/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePost() *models.BlogPostModel {
	return &models.BlogPostModel{
		Title:           "Best SEO Tools",
		MetaTitle:       "Best SEO Tools for 2026",
		MetaDescription: "A practical roundup of SEO tooling.",
		URLSlug:         "best-seo-tools",
		ShortIntro:      "<p>Picking tools is hard.</p>",
		Content:         "<p>Here is the full article body.</p>",
		FaqContent: []models.FaqItem{
			{Question: "Is it free?", Answer: "Some of them are."},
			{Question: "Do I need all of them?", Answer: "No."},
		},
	}
}

func TestRenderMarkdownLayout(t *testing.T) {
	md := renderMarkdown(samplePost())

	assert.True(t, strings.HasPrefix(md, "# Best SEO Tools for 2026\n\n"))
	assert.Contains(t, md, "**Meta Description:** A practical roundup of SEO tooling.\n\n")
	assert.Contains(t, md, "**URL Slug:** best-seo-tools\n\n")
	assert.Contains(t, md, "## Short Intro\n\n<p>Picking tools is hard.</p>")
	assert.Contains(t, md, "## Full Content\n\n<p>Here is the full article body.</p>")
	assert.Contains(t, md, "## Frequently Asked Questions\n\n### 1. Is it free?\n\nSome of them are.\n\n### 2. Do I need all of them?\n\nNo.")
}

func TestRenderMarkdownNoFaqSection(t *testing.T) {
	post := samplePost()
	post.FaqContent = nil

	md := renderMarkdown(post)
	assert.NotContains(t, md, "Frequently Asked Questions")
}

func TestRenderMarkdownFallsBackToTitle(t *testing.T) {
	post := samplePost()
	post.MetaTitle = "  "

	md := renderMarkdown(post)
	assert.True(t, strings.HasPrefix(md, "# Best SEO Tools\n"))
}

func TestRenderHTMLDocument(t *testing.T) {
	html, err := renderHTMLDocument(samplePost())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>Best SEO Tools for 2026</title>")
	assert.Contains(t, html, `<meta name="description" content="A practical roundup of SEO tooling." />`)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<p>Here is the full article body.</p>")
	assert.True(t, strings.HasSuffix(html, "</html>"))
}

func TestRenderDocxPackage(t *testing.T) {
	data, err := renderDocx(samplePost())
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	files := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		files[f.Name] = string(content)
	}

	require.Contains(t, files, "[Content_Types].xml")
	require.Contains(t, files, "_rels/.rels")
	require.Contains(t, files, "word/styles.xml")
	require.Contains(t, files, "word/document.xml")

	doc := files["word/document.xml"]
	assert.Contains(t, doc, `<w:pStyle w:val="Heading1"/>`)
	assert.Contains(t, doc, "Best SEO Tools for 2026")
	assert.Contains(t, doc, "Meta Description: ")
	assert.Contains(t, doc, "Short Introduction")
	assert.Contains(t, doc, "Frequently Asked Questions")
	assert.Contains(t, doc, "1. Is it free?")
	assert.Contains(t, doc, "&lt;p&gt;Here is the full article body.&lt;/p&gt;")
}

func TestContentParagraphsPromotesHeadings(t *testing.T) {
	paras := contentParagraphs("# One\n## Two\n### Three\nplain\n")

	require.Len(t, paras, 5)
	assert.Equal(t, "Heading1", paras[0].style)
	assert.Equal(t, "One", paras[0].runs[0].text)
	assert.Equal(t, "Heading2", paras[1].style)
	assert.Equal(t, "Heading3", paras[2].style)
	assert.Equal(t, "", paras[3].style)
	assert.Equal(t, "plain", paras[3].runs[0].text)
	assert.Equal(t, "", paras[4].runs[0].text)
}

func TestXMLEscape(t *testing.T) {
	assert.Equal(t, "a &amp; b &lt;c&gt;", xmlEscape("a & b <c>"))
}

func TestStoreLocal(t *testing.T) {
	svc := &Service{localDir: t.TempDir()}
	artifact := &Artifact{
		FileName:    "best-seo-tools.md",
		ContentType: "text/markdown; charset=utf-8",
		Data:        []byte("# hello\n"),
	}

	path, err := svc.StoreLocal("user-1", artifact)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, artifact.Data, data)
	assert.Contains(t, path, "user-1")
}

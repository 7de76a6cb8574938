package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/seoforge/core/internal/models"
)

// A .docx file is a ZIP package of OOXML parts. Only the parts Word requires
// to open the document are written: content types, the package relationship,
// the document body and a styles part defining the three heading levels.

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
  <Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const docxPackageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const docxDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const docxStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:styleId="Heading1">
    <w:name w:val="heading 1"/>
    <w:rPr><w:b/><w:sz w:val="48"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading2">
    <w:name w:val="heading 2"/>
    <w:rPr><w:b/><w:sz w:val="36"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading3">
    <w:name w:val="heading 3"/>
    <w:rPr><w:b/><w:sz w:val="28"/></w:rPr>
  </w:style>
</w:styles>`

type docxRun struct {
	text string
	bold bool
}

type docxParagraph struct {
	style string
	runs  []docxRun
}

func para(text string) docxParagraph {
	return docxParagraph{runs: []docxRun{{text: text}}}
}

func headingPara(style, text string) docxParagraph {
	return docxParagraph{style: style, runs: []docxRun{{text: text}}}
}

func labeledPara(label, text string) docxParagraph {
	return docxParagraph{runs: []docxRun{{text: label, bold: true}, {text: text}}}
}

func renderDocx(post *models.BlogPostModel) ([]byte, error) {
	paragraphs := []docxParagraph{
		headingPara("Heading1", exportTitle(post)),
		labeledPara("Meta Description: ", post.MetaDescription),
		labeledPara("URL Slug: ", post.URLSlug),
		para(""),
		headingPara("Heading2", "Short Introduction"),
		para(post.ShortIntro),
		para(""),
		headingPara("Heading2", "Full Content"),
	}
	paragraphs = append(paragraphs, contentParagraphs(post.Content)...)

	if len(post.FaqContent) > 0 {
		paragraphs = append(paragraphs, para(""), headingPara("Heading2", "Frequently Asked Questions"))
		for i, faq := range post.FaqContent {
			paragraphs = append(paragraphs,
				headingPara("Heading3", fmt.Sprintf("%d. %s", i+1, faq.Question)),
				para(faq.Answer),
				para(""),
			)
		}
	}

	return packDocx(paragraphs)
}

// contentParagraphs splits the body by line, promoting leading markdown
// heading markers to styled paragraphs.
func contentParagraphs(content string) []docxParagraph {
	lines := strings.Split(content, "\n")
	out := make([]docxParagraph, 0, len(lines))
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "### "):
			out = append(out, headingPara("Heading3", strings.TrimPrefix(line, "### ")))
		case strings.HasPrefix(line, "## "):
			out = append(out, headingPara("Heading2", strings.TrimPrefix(line, "## ")))
		case strings.HasPrefix(line, "# "):
			out = append(out, headingPara("Heading1", strings.TrimPrefix(line, "# ")))
		default:
			out = append(out, para(strings.TrimRight(line, "\r")))
		}
	}
	return out
}

func buildDocumentXML(paragraphs []docxParagraph) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		b.WriteString("<w:p>")
		if p.style != "" {
			fmt.Fprintf(&b, `<w:pPr><w:pStyle w:val="%s"/></w:pPr>`, p.style)
		}
		for _, r := range p.runs {
			b.WriteString("<w:r>")
			if r.bold {
				b.WriteString("<w:rPr><w:b/></w:rPr>")
			}
			fmt.Fprintf(&b, `<w:t xml:space="preserve">%s</w:t>`, xmlEscape(r.text))
			b.WriteString("</w:r>")
		}
		b.WriteString("</w:p>")
	}
	b.WriteString("</w:body></w:document>")
	return b.String()
}

func packDocx(paragraphs []docxParagraph) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxPackageRels},
		{"word/_rels/document.xml.rels", docxDocumentRels},
		{"word/styles.xml", docxStyles},
		{"word/document.xml", buildDocumentXML(paragraphs)},
	}
	for _, part := range parts {
		f, err := w.Create(part.name)
		if err != nil {
			return nil, err
		}
		if _, err := f.Write([]byte(part.content)); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xmlEscape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

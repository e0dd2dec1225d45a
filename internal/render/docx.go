package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"docuai/internal/models"
)

// DOCXRenderer writes a minimal WordprocessingML package.
type DOCXRenderer struct{}

func NewDOCXRenderer() *DOCXRenderer {
	return &DOCXRenderer{}
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

func (r *DOCXRenderer) Render(content map[string]any, templateType models.TemplateType, design *models.DesignTokens) ([]byte, error) {
	c := ParseContent(content)
	s := newStyle(design)

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", docxStyles(s)},
		{"word/document.xml", docxDocument(c, templateType, s)},
		{"docProps/core.xml", docxCore(c)},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create docx part %s: %w", p.name, err)
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, fmt.Errorf("failed to write docx part %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize docx: %w", err)
	}
	return buf.Bytes(), nil
}

// spacingAfter is paragraph spacing in twentieths of a point.
func spacingAfter(sp models.Spacing) int {
	switch sp {
	case models.SpacingCompact:
		return 80
	case models.SpacingRelaxed:
		return 240
	default:
		return 160
	}
}

func docxStyles(s style) string {
	after := spacingAfter(s.spacing)
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	fmt.Fprintf(&b, `<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s" w:cs="%s"/><w:color w:val="%s"/><w:sz w:val="22"/></w:rPr></w:rPrDefault>`,
		esc(s.bodyFont), esc(s.bodyFont), esc(s.bodyFont), s.body)
	fmt.Fprintf(&b, `<w:pPrDefault><w:pPr><w:spacing w:after="%d"/></w:pPr></w:pPrDefault></w:docDefaults>`, after)
	b.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>`)
	fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:after="%d"/></w:pPr><w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s"/><w:b/><w:color w:val="%s"/><w:sz w:val="48"/></w:rPr></w:style>`,
		after*2, esc(s.headingFont), esc(s.headingFont), s.primary)
	fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="Subtitle"><w:name w:val="Subtitle"/><w:basedOn w:val="Normal"/><w:rPr><w:i/><w:color w:val="%s"/><w:sz w:val="24"/></w:rPr></w:style>`,
		s.secondary)
	fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:pPr><w:keepNext/><w:spacing w:before="%d"/><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s"/><w:b/><w:color w:val="%s"/><w:sz w:val="30"/></w:rPr></w:style>`,
		after*2, esc(s.headingFont), esc(s.headingFont), s.heading)
	b.WriteString(`<w:style w:type="paragraph" w:styleId="ListBullet"><w:name w:val="List Bullet"/><w:basedOn w:val="Normal"/><w:pPr><w:ind w:left="360" w:hanging="360"/></w:pPr></w:style>`)
	b.WriteString(`</w:styles>`)
	return b.String()
}

func docxDocument(c Content, t models.TemplateType, s style) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	if s.coverStyle == "banner" {
		docxShadedPara(&b, strings.ToUpper(typeLabel(t)), s.primary)
	}
	docxPara(&b, "Title", c.Title)
	if s.coverStyle != "banner" {
		docxPara(&b, "Subtitle", typeLabel(t))
	}
	if s.logoURL != "" {
		docxPara(&b, "Subtitle", s.logoURL)
	}
	if c.Summary != "" {
		docxPara(&b, "", c.Summary)
	}

	for _, f := range c.Fields {
		fmt.Fprintf(&b, `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">%s: </w:t></w:r><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
			esc(f.Label), esc(f.Value))
	}

	for _, sec := range c.Sections {
		if sec.Heading != "" {
			docxPara(&b, "Heading1", sec.Heading)
		}
		for _, line := range splitParagraphs(sec.Body) {
			docxPara(&b, "", line)
		}
		for _, bullet := range sec.Bullets {
			docxPara(&b, "ListBullet", "• "+bullet)
		}
	}

	if c.Table != nil {
		docxTable(&b, c.Table, s)
	}

	b.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func docxPara(b *strings.Builder, styleID, text string) {
	b.WriteString(`<w:p>`)
	if styleID != "" {
		fmt.Fprintf(b, `<w:pPr><w:pStyle w:val="%s"/></w:pPr>`, styleID)
	}
	fmt.Fprintf(b, `<w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, esc(text))
}

func docxShadedPara(b *strings.Builder, text, fill string) {
	fmt.Fprintf(b, `<w:p><w:pPr><w:shd w:val="clear" w:color="auto" w:fill="%s"/></w:pPr><w:r><w:rPr><w:b/><w:color w:val="FFFFFF"/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
		fill, esc(text))
}

func docxTable(b *strings.Builder, t *Table, s style) {
	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="5000" w:type="pct"/>`)
	switch s.tableStyle {
	case "minimal":
		fmt.Fprintf(b, `<w:tblBorders><w:bottom w:val="single" w:sz="4" w:color="%s"/></w:tblBorders>`, s.primary)
	default:
		fmt.Fprintf(b, `<w:tblBorders><w:top w:val="single" w:sz="4" w:color="%[1]s"/><w:left w:val="single" w:sz="4" w:color="%[1]s"/><w:bottom w:val="single" w:sz="4" w:color="%[1]s"/><w:right w:val="single" w:sz="4" w:color="%[1]s"/><w:insideH w:val="single" w:sz="4" w:color="%[1]s"/><w:insideV w:val="single" w:sz="4" w:color="%[1]s"/></w:tblBorders>`, s.secondary)
	}
	b.WriteString(`</w:tblPr>`)

	b.WriteString(`<w:tr>`)
	for _, col := range t.Columns {
		fmt.Fprintf(b, `<w:tc><w:tcPr><w:shd w:val="clear" w:color="auto" w:fill="%s"/></w:tcPr><w:p><w:r><w:rPr><w:b/><w:color w:val="FFFFFF"/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r></w:p></w:tc>`,
			s.primary, esc(col))
	}
	b.WriteString(`</w:tr>`)

	for i, row := range t.Rows {
		b.WriteString(`<w:tr>`)
		for _, cell := range row {
			b.WriteString(`<w:tc>`)
			if s.tableStyle == "striped" && i%2 == 1 {
				b.WriteString(`<w:tcPr><w:shd w:val="clear" w:color="auto" w:fill="F2F2F2"/></w:tcPr>`)
			}
			fmt.Fprintf(b, `<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p></w:tc>`, esc(cell))
		}
		b.WriteString(`</w:tr>`)
	}
	b.WriteString(`</w:tbl><w:p/>`)
}

func docxCore(c Content) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
		`<dc:title>` + esc(c.Title) + `</dc:title><dc:creator>DocuAI</dc:creator></cp:coreProperties>`
}

func splitParagraphs(body string) []string {
	var out []string
	for _, p := range strings.Split(body, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func esc(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

package render

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"docuai/internal/models"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/font"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/encoding/charmap"
)

// unicodeFont is used for any line the standard fonts cannot encode. The
// standard fonts only cover WinAnsi, so Cyrillic would otherwise come out
// blank.
const unicodeFont = "Roboto-Regular"

//go:embed fonts/Roboto-Regular.ttf
var unicodeFontTTF []byte

var (
	unicodeFontOnce sync.Once
	unicodeFontErr  error
)

// ensureUnicodeFont installs the embedded TrueType font into pdfcpu's user
// font directory unless pdfcpu already loaded it from its config dir.
func ensureUnicodeFont() error {
	unicodeFontOnce.Do(func() {
		font.UserFontMetricsLock.RLock()
		_, ok := font.UserFontMetrics[unicodeFont]
		font.UserFontMetricsLock.RUnlock()
		if ok {
			return
		}
		if font.UserFontDir == "" {
			dir, err := os.MkdirTemp("", "docuai-fonts")
			if err != nil {
				unicodeFontErr = fmt.Errorf("failed to create font dir: %w", err)
				return
			}
			font.UserFontDir = dir
		}
		if err := font.InstallFontFromBytes(font.UserFontDir, unicodeFont, unicodeFontTTF); err != nil {
			unicodeFontErr = fmt.Errorf("failed to install %s: %w", unicodeFont, err)
			return
		}
		if err := font.LoadUserFonts(); err != nil {
			unicodeFontErr = fmt.Errorf("failed to load user fonts: %w", err)
		}
	})
	return unicodeFontErr
}

// winAnsi reports whether every rune of s has a WinAnsi code point.
func winAnsi(s string) bool {
	for _, r := range s {
		if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
			return false
		}
	}
	return true
}

// textFont swaps in the unicode font when text falls outside WinAnsi.
func textFont(text string, f pdfFont) pdfFont {
	if !winAnsi(text) {
		f.Name = unicodeFont
	}
	return f
}

// PDFRenderer lays content out on A4 pages and hands the page description to
// pdfcpu's JSON based creator.
type PDFRenderer struct {
	conf *model.Configuration
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{conf: model.NewDefaultConfiguration()}
}

func (r *PDFRenderer) Render(content map[string]any, templateType models.TemplateType, design *models.DesignTokens) ([]byte, error) {
	desc := layoutPDF(ParseContent(content), templateType, newStyle(design))
	if desc.uses(unicodeFont) {
		if err := ensureUnicodeFont(); err != nil {
			return nil, err
		}
	}
	js, err := json.Marshal(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pdf layout: %w", err)
	}

	var out bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(js), &out, r.conf); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}
	return out.Bytes(), nil
}

type pdfDescriptor struct {
	Paper string             `json:"paper"`
	Pages map[string]pdfPage `json:"pages"`
}

func (d pdfDescriptor) uses(fontName string) bool {
	for _, p := range d.Pages {
		for _, t := range p.Content.Text {
			if t.Font.Name == fontName {
				return true
			}
		}
	}
	return false
}

type pdfPage struct {
	Content pdfContent `json:"content"`
}

type pdfContent struct {
	Boxes []pdfBox  `json:"box,omitempty"`
	Text  []pdfText `json:"text,omitempty"`
}

type pdfText struct {
	Value string     `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Font  pdfFont    `json:"font"`
}

type pdfFont struct {
	Name  string `json:"name"`
	Size  int    `json:"size"`
	Color string `json:"col,omitempty"`
}

type pdfBox struct {
	Pos     [2]float64 `json:"pos"`
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	FillCol string     `json:"fillCol,omitempty"`
}

const (
	pageWidth  = 595.0
	pageHeight = 842.0
	pageMargin = 56.0

	titleSize   = 22
	headingSize = 14
	bodySize    = 10
)

// pdfLayout is a cursor over pages; y runs from the top margin down.
type pdfLayout struct {
	style style
	pages []pdfContent
	y     float64
}

func layoutPDF(c Content, t models.TemplateType, s style) pdfDescriptor {
	l := &pdfLayout{style: s}
	l.newPage()

	if s.coverStyle == "banner" {
		l.current().Boxes = append(l.current().Boxes, pdfBox{
			Pos:     [2]float64{0, pageHeight - 90},
			Width:   pageWidth,
			Height:  90,
			FillCol: "#" + s.primary,
		})
		l.line(strings.ToUpper(typeLabel(t)), pdfFont{Name: coreFont(s.headingFont, true), Size: headingSize, Color: "#FFFFFF"}, pageMargin)
		l.y -= 50
	}

	l.paragraph(c.Title, pdfFont{Name: coreFont(s.headingFont, true), Size: titleSize, Color: "#" + s.primary})
	if s.coverStyle != "banner" {
		l.paragraph(typeLabel(t), pdfFont{Name: coreFont(s.bodyFont, false), Size: bodySize + 2, Color: "#" + s.secondary})
	}
	if s.logoURL != "" {
		l.paragraph(s.logoURL, pdfFont{Name: coreFont(s.bodyFont, false), Size: bodySize - 2, Color: "#" + s.secondary})
	}
	l.gap()

	body := pdfFont{Name: coreFont(s.bodyFont, false), Size: bodySize, Color: "#" + s.body}
	if c.Summary != "" {
		l.paragraph(c.Summary, body)
		l.gap()
	}
	for _, f := range c.Fields {
		l.paragraph(f.Label+": "+f.Value, body)
	}
	if len(c.Fields) > 0 {
		l.gap()
	}

	heading := pdfFont{Name: coreFont(s.headingFont, true), Size: headingSize, Color: "#" + s.heading}
	for _, sec := range c.Sections {
		if sec.Heading != "" {
			l.paragraph(sec.Heading, heading)
		}
		for _, p := range splitParagraphs(sec.Body) {
			l.paragraph(p, body)
		}
		for _, b := range sec.Bullets {
			l.paragraph("- "+b, body)
		}
		l.gap()
	}

	if c.Table != nil {
		l.table(c.Table)
	}

	desc := pdfDescriptor{Paper: "A4P", Pages: make(map[string]pdfPage, len(l.pages))}
	for i, p := range l.pages {
		desc.Pages[strconv.Itoa(i+1)] = pdfPage{Content: p}
	}
	return desc
}

func (l *pdfLayout) newPage() {
	l.pages = append(l.pages, pdfContent{})
	l.y = pageHeight - pageMargin
}

func (l *pdfLayout) current() *pdfContent {
	return &l.pages[len(l.pages)-1]
}

func (l *pdfLayout) lineHeight(size int) float64 {
	factor := 1.4
	switch l.style.spacing {
	case models.SpacingCompact:
		factor = 1.2
	case models.SpacingRelaxed:
		factor = 1.7
	}
	return float64(size) * factor
}

func (l *pdfLayout) line(text string, font pdfFont, x float64) {
	h := l.lineHeight(font.Size)
	if l.y-h < pageMargin {
		l.newPage()
	}
	l.y -= h
	l.current().Text = append(l.current().Text, pdfText{Value: text, Pos: [2]float64{x, l.y}, Font: textFont(text, font)})
}

func (l *pdfLayout) paragraph(text string, font pdfFont) {
	for _, ln := range wrap(text, maxChars(pageWidth-2*pageMargin, font.Size)) {
		l.line(ln, font, pageMargin)
	}
}

func (l *pdfLayout) gap() {
	l.y -= l.lineHeight(bodySize) / 2
}

func (l *pdfLayout) table(t *Table) {
	colWidth := (pageWidth - 2*pageMargin) / float64(len(t.Columns))
	limit := maxChars(colWidth-4, bodySize)

	header := pdfFont{Name: coreFont(l.style.headingFont, true), Size: bodySize, Color: "#" + l.style.primary}
	cell := pdfFont{Name: coreFont(l.style.bodyFont, false), Size: bodySize, Color: "#" + l.style.body}

	row := func(cells []string, font pdfFont) {
		h := l.lineHeight(font.Size)
		if l.y-h < pageMargin {
			l.newPage()
		}
		l.y -= h
		for i, v := range cells {
			v = truncate(v, limit)
			l.current().Text = append(l.current().Text, pdfText{
				Value: v,
				Pos:   [2]float64{pageMargin + float64(i)*colWidth, l.y},
				Font:  textFont(v, font),
			})
		}
	}

	row(t.Columns, header)
	for _, r := range t.Rows {
		row(r, cell)
	}
}

// maxChars estimates how many characters of the given size fit a width.
func maxChars(width float64, size int) int {
	n := int(width / (float64(size) * 0.5))
	if n < 1 {
		return 1
	}
	return n
}

func wrap(text string, limit int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	var cur []rune
	for _, w := range words {
		wr := []rune(w)
		for len(wr) > limit {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = nil
			}
			lines = append(lines, string(wr[:limit]))
			wr = wr[limit:]
		}
		if len(wr) == 0 {
			continue
		}
		switch {
		case len(cur) == 0:
			cur = wr
		case len(cur)+1+len(wr) <= limit:
			cur = append(append(cur, ' '), wr...)
		default:
			lines = append(lines, string(cur))
			cur = wr
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return string(r[:limit])
	}
	return string(r[:limit-1]) + "…"
}

// coreFont maps a design font family onto one of the standard PDF fonts.
func coreFont(family string, bold bool) string {
	f := strings.ToLower(family)
	base := "Helvetica"
	switch {
	case strings.Contains(f, "times"), strings.Contains(f, "georgia"), strings.Contains(f, "garamond"),
		strings.Contains(f, "serif") && !strings.Contains(f, "sans"):
		base = "Times"
	case strings.Contains(f, "courier"), strings.Contains(f, "mono"):
		base = "Courier"
	}
	switch {
	case base == "Times" && bold:
		return "Times-Bold"
	case base == "Times":
		return "Times-Roman"
	case bold:
		return base + "-Bold"
	default:
		return base
	}
}

// Package receipt renders the printable park entry receipt as an A4 PDF.
package receipt

import (
	"fmt"
	"strings"

	"github.com/benedoc-inc/pdfer/writer"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/goliatone/go-parkentry/internal/registration"
)

// Filename is the name the receipt is served under.
const Filename = "park_entry_receipt.pdf"

const (
	margin     = 40.0
	rowHeight  = 18.0
	cellPad    = 4.0
	bodySize   = 10.0
	headerSize = 10.0
)

// Header identifies the issuing authority printed at the top of every
// receipt.
type Header struct {
	Authority string
	Park      string
}

// pdfer writes the standard font name straight after /BaseFont, so the
// encoding entry rides along with it. Text is shown as WinAnsi bytes.
const (
	fontRegular = "Helvetica/Encoding/WinAnsiEncoding"
	fontBold    = "Helvetica-Bold/Encoding/WinAnsiEncoding"
)

type rgb struct{ r, g, b float64 }

var (
	clientHeaderFill  = rgb{0.56, 0.93, 0.56}
	vehicleHeaderFill = rgb{0.83, 0.83, 0.83}
)

type column struct {
	title string
	width float64
}

// Render builds the receipt for reg. groupFile is the stored name of the
// uploaded group list, empty when none was attached.
func Render(h Header, reg *registration.Registration, groupFile string) ([]byte, error) {
	if reg == nil {
		return nil, fmt.Errorf("receipt: registration is nil")
	}
	doc := newDocument()

	doc.text(h.Authority, doc.bold, 20)
	doc.gap(4)
	doc.text(h.Park, doc.regular, 12)
	doc.gap(12)
	doc.text("PARK ENTRY RECEIPT - "+reg.Category.Title(), doc.bold, 14)
	doc.gap(8)

	clientRows := make([][]string, 0, len(reg.Clients))
	for _, c := range reg.Clients {
		clientRows = append(clientRows, []string{c.Name, c.Contact, c.Nationality})
	}
	if len(clientRows) == 0 {
		clientRows = append(clientRows, []string{"-", "-", "-"})
	}
	doc.table([]column{{"Client Name", 200}, {"Contact", 120}, {"Nationality", 120}}, clientRows, clientHeaderFill)
	doc.gap(10)

	if reg.HasVehicles() {
		doc.text("Vehicle Details", doc.bold, 12)
		doc.gap(4)
		rows := make([][]string, 0, len(reg.Vehicles))
		for _, v := range reg.Vehicles {
			rows = append(rows, []string{v.Type, v.Reg, v.DriverName, v.DriverPhone})
		}
		doc.table([]column{{"Car Type", 120}, {"Reg. Number", 100}, {"Driver Name", 160}, {"Driver Phone", 100}}, rows, vehicleHeaderFill)
		doc.gap(10)
	}

	if reg.CompanyName != "" {
		doc.text("Tour Company: "+reg.CompanyName, doc.regular, bodySize)
	}
	if acc := accommodation(reg); acc != "" {
		doc.text("Accommodation: "+acc, doc.regular, bodySize)
	}
	if reg.Institution != "" {
		doc.text("Institution: "+reg.Institution, doc.regular, bodySize)
	}
	doc.text("Activities: "+reg.ActivitiesText(), doc.regular, bodySize)
	doc.gap(12)
	if groupFile != "" {
		doc.text("Group upload file: "+groupFile, doc.regular, bodySize)
		doc.gap(6)
	}
	doc.text("Thank you for visiting "+h.Authority+"!", doc.regular, bodySize)
	if reg.ID != "" {
		doc.gap(6)
		doc.text("Receipt ID: "+reg.ID, doc.regular, 8)
	}

	return doc.bytes()
}

func accommodation(reg *registration.Registration) string {
	if reg.Accommodation == "Other" && reg.OtherAccommodation != "" {
		return reg.OtherAccommodation
	}
	return reg.Accommodation
}

// document lays out lines top to bottom and starts a new page when the
// cursor reaches the bottom margin.
type document struct {
	builder *writer.SimplePDFBuilder
	page    *writer.PageBuilder
	regular string
	bold    string
	y       float64
}

func newDocument() *document {
	d := &document{builder: writer.NewSimplePDFBuilder()}
	d.newPage()
	return d
}

func (d *document) newPage() {
	if d.page != nil {
		d.builder.FinalizePage(d.page)
	}
	d.page = d.builder.AddPage(writer.PageSizeA4)
	d.regular = d.page.AddStandardFont(fontRegular)
	d.bold = d.page.AddStandardFont(fontBold)
	d.y = writer.PageSizeA4.Height - margin
}

func (d *document) ensure(height float64) {
	if d.y-height < margin {
		d.newPage()
	}
}

func (d *document) gap(points float64) {
	d.y -= points
}

func (d *document) text(s, font string, size float64) {
	if s == "" {
		return
	}
	d.ensure(size * 1.4)
	d.y -= size * 1.2
	content := d.page.Content().
		BeginText().
		SetFont(font, size).
		SetTextPosition(margin, d.y)
	showText(content, s).EndText()
	d.y -= size * 0.2
}

func (d *document) table(cols []column, rows [][]string, fill rgb) {
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.title
	}
	d.row(cols, header, d.bold, &fill)
	for _, r := range rows {
		d.row(cols, r, d.regular, nil)
	}
}

func (d *document) row(cols []column, cells []string, font string, fill *rgb) {
	d.ensure(rowHeight)
	top := d.y
	bottom := top - rowHeight
	content := d.page.Content()

	x := margin
	for i, c := range cols {
		if fill != nil {
			content.SaveState().
				SetFillColorRGB(fill.r, fill.g, fill.b).
				Rectangle(x, bottom, c.width, rowHeight).
				Fill().
				RestoreState()
		}
		content.SaveState().
			SetLineWidth(0.5).
			SetStrokeColorGray(0.5).
			Rectangle(x, bottom, c.width, rowHeight).
			Stroke().
			RestoreState()

		var cell string
		if i < len(cells) {
			cell = fit(cells[i], c.width-2*cellPad, headerSize)
		}
		if cell != "" {
			content.BeginText().
				SetFont(font, bodySize).
				SetTextPosition(x+cellPad, bottom+5)
			showText(content, cell).EndText()
		}
		x += c.width
	}
	d.y = bottom
}

func (d *document) bytes() ([]byte, error) {
	d.builder.FinalizePage(d.page)
	out, err := d.builder.Bytes()
	if err != nil {
		return nil, fmt.Errorf("receipt: write pdf: %w", err)
	}
	return out, nil
}

// fit truncates s to roughly the number of Helvetica glyphs that fit width.
func fit(s string, width, size float64) string {
	limit := int(width / (size * 0.5))
	runes := []rune(strings.TrimSpace(s))
	if limit <= 0 || len(runes) <= limit {
		return string(runes)
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// showText writes s as a hex string so WinAnsi bytes above 0x7F reach the
// content stream unchanged.
func showText(content *writer.ContentStream, s string) *writer.ContentStream {
	return content.Raw(fmt.Sprintf("<%X> Tj", encodeText(s)))
}

// encodeText converts s to Windows-1252. Runes outside the code page fall
// back to their base letter ("ş" -> "s"), or to '?' when there is none.
func encodeText(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			out = append(out, b)
			continue
		}
		b := byte('?')
		if base := []rune(norm.NFD.String(string(r))); len(base) > 1 && base[0] < 0x80 {
			b = byte(base[0])
		}
		out = append(out, b)
	}
	return out
}

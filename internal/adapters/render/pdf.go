package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"mojotix/internal/domain"
)

type pdfRenderer struct{}

// NewPDFRenderer returns a TicketRenderer that builds one A4 PDF per booking,
// one ticket card per ticket, with each ticket's QR image embedded.
func NewPDFRenderer() domain.TicketRenderer {
	return &pdfRenderer{}
}

func (r *pdfRenderer) Render(ctx context.Context, view *domain.BookingTicketsView) (*domain.RenderedDocument, error) {
	if err := validateView(view); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 12, view.EventTitle, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	when := view.EventDate
	if view.EventTime != "" {
		when += " " + view.EventTime
	}
	pdf.CellFormat(0, 7, fmt.Sprintf("%s - %s, %s", when, view.Venue, view.City), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for i, t := range view.Tickets {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("render cancelled: %w", err)
		}

		// New page if the next card would not fit.
		if pdf.GetY() > 230 {
			pdf.AddPage()
		}
		top := pdf.GetY()
		pdf.SetFillColor(245, 245, 255)
		pdf.Rect(15, top, 180, 52, "F")

		pdf.SetXY(20, top+5)
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(120, 8, t.Number, "", 1, "L", false, 0, "")
		pdf.SetX(20)
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(120, 7, fmt.Sprintf(
			"Holder: %s\nBooked by: %s\nPrice: %s",
			t.HolderName, view.BookerName, view.PriceLabel,
		), "", "L", false)

		imgName := fmt.Sprintf("qr-%d", i+1)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(t.QRPNG))
		pdf.ImageOptions(imgName, 150, top+6, 40, 40, false, opts, 0, "")

		pdf.SetY(top + 56)
	}

	pdf.SetY(-25)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 8, "Present a ticket's QR code at entry. Each code admits one person once.", "T", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return &domain.RenderedDocument{
		Filename:    "tickets.pdf",
		ContentType: "application/pdf",
		Data:        buf.Bytes(),
	}, nil
}

// validateView rejects a view that cannot represent every ticket. A missing
// number or QR image aborts the whole render rather than dropping the ticket.
func validateView(view *domain.BookingTicketsView) error {
	if view == nil {
		return fmt.Errorf("nil ticket view")
	}
	if len(view.Tickets) == 0 {
		return fmt.Errorf("ticket view has no tickets")
	}
	for i, t := range view.Tickets {
		if t.Number == "" {
			return fmt.Errorf("ticket %d has no number", i+1)
		}
		if len(t.QRPNG) == 0 {
			return fmt.Errorf("ticket %s has no QR image", t.Number)
		}
	}
	return nil
}

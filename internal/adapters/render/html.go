package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"

	"mojotix/internal/domain"
)

// htmlDocTemplate is a print-oriented, self-contained ticket page. QR images
// are inlined as data URIs so viewing needs no network fetches.
const htmlDocTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.EventTitle}} - Tickets</title>
<style>
body { font-family: Arial, Helvetica, sans-serif; margin: 2em; color: #222; }
h1 { text-align: center; margin-bottom: 0.2em; }
p.meta { text-align: center; color: #555; margin-top: 0; }
.ticket { display: flex; justify-content: space-between; align-items: center;
  border: 1px solid #ccd; background: #f5f5ff; border-radius: 8px;
  padding: 1em 1.5em; margin: 1em 0; page-break-inside: avoid; }
.ticket .num { font-size: 1.2em; font-weight: bold; }
.ticket img { width: 140px; height: 140px; }
footer { border-top: 1px solid #ccc; margin-top: 2em; padding-top: 0.5em;
  text-align: center; font-style: italic; font-size: 0.85em; color: #666; }
</style>
</head>
<body>
<h1>{{.EventTitle}}</h1>
<p class="meta">{{.EventDate}}{{if .EventTime}} {{.EventTime}}{{end}} &middot; {{.Venue}}, {{.City}}</p>
{{if .EventDescription}}<p class="meta">{{.EventDescription}}</p>{{end}}
{{range .Tickets}}
<div class="ticket">
  <div>
    <div class="num">{{.Number}}</div>
    <div>Holder: {{.HolderName}}</div>
    <div>Booked by: {{$.BookerName}}</div>
    <div>Price: {{$.PriceLabel}}</div>
  </div>
  <img src="{{.QRDataURI}}" alt="QR code for {{.Number}}">
</div>
{{end}}
<footer>Present a ticket's QR code at entry. Each code admits one person once.</footer>
</body>
</html>
`

type htmlRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer returns a TicketRenderer that produces a self-contained
// printable HTML document, one ticket card per ticket. Interchangeable with
// the PDF renderer: both expose the same fields.
func NewHTMLRenderer() domain.TicketRenderer {
	return &htmlRenderer{
		tmpl: template.Must(template.New("tickets").Parse(htmlDocTemplate)),
	}
}

type htmlTicket struct {
	Number     string
	HolderName string
	// QRDataURI is a complete data: URI. Typed template.URL so the base64
	// payload is emitted verbatim; html/template would otherwise entity-escape
	// "+" inside the attribute.
	QRDataURI template.URL
}

type htmlView struct {
	EventTitle       string
	EventDescription string
	EventDate        string
	EventTime        string
	Venue            string
	City             string
	BookerName       string
	PriceLabel       string
	Tickets          []htmlTicket
}

func (r *htmlRenderer) Render(ctx context.Context, view *domain.BookingTicketsView) (*domain.RenderedDocument, error) {
	if err := validateView(view); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render cancelled: %w", err)
	}

	hv := htmlView{
		EventTitle:       view.EventTitle,
		EventDescription: view.EventDescription,
		EventDate:        view.EventDate,
		EventTime:        view.EventTime,
		Venue:            view.Venue,
		City:             view.City,
		BookerName:       view.BookerName,
		PriceLabel:       view.PriceLabel,
	}
	for _, t := range view.Tickets {
		hv.Tickets = append(hv.Tickets, htmlTicket{
			Number:     t.Number,
			HolderName: t.HolderName,
			QRDataURI:  template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(t.QRPNG)),
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, hv); err != nil {
		return nil, fmt.Errorf("execute ticket template: %w", err)
	}
	return &domain.RenderedDocument{
		Filename:    "tickets.html",
		ContentType: "text/html; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}

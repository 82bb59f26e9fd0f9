package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mojotix/internal/domain"
)

func ticketView(t *testing.T, ticketCount int) *domain.BookingTicketsView {
	t.Helper()
	view := &domain.BookingTicketsView{
		EventTitle:       "Jazz Night",
		EventDescription: "An evening of live jazz.",
		EventDate:        "Wed, 01 Apr 2026",
		EventTime:        "19:30",
		Venue:            "Blue Hall",
		City:             "Lagos",
		BookerName:       "Ada Lovelace",
		PriceLabel:       "25.00",
	}
	for i := 1; i <= ticketCount; i++ {
		number := fmt.Sprintf("MJ-1773480413589-%03d", i)
		png, err := qrcode.Encode(number, qrcode.Medium, 256)
		require.NoError(t, err)
		view.Tickets = append(view.Tickets, domain.TicketCardView{
			Number:     number,
			HolderName: "Ada Lovelace",
			QRPNG:      png,
		})
	}
	return view
}

// Both renderers honor the same contract: a self-contained document with one
// card per ticket, or an error when any single ticket cannot be represented.
func renderers() map[string]domain.TicketRenderer {
	return map[string]domain.TicketRenderer{
		"pdf":  NewPDFRenderer(),
		"html": NewHTMLRenderer(),
	}
}

func TestRenderers_Conformance(t *testing.T) {
	ctx := context.Background()

	for name, r := range renderers() {
		t.Run(name, func(t *testing.T) {
			t.Run("renders a document per booking", func(t *testing.T) {
				doc, err := r.Render(ctx, ticketView(t, 3))
				require.NoError(t, err)
				assert.NotEmpty(t, doc.Data)
				assert.NotEmpty(t, doc.Filename)
				assert.NotEmpty(t, doc.ContentType)
			})

			t.Run("nil view is rejected", func(t *testing.T) {
				_, err := r.Render(ctx, nil)
				require.Error(t, err)
			})

			t.Run("empty ticket list is rejected", func(t *testing.T) {
				view := ticketView(t, 1)
				view.Tickets = nil
				_, err := r.Render(ctx, view)
				require.Error(t, err)
			})

			t.Run("a missing ticket number fails the whole render", func(t *testing.T) {
				view := ticketView(t, 2)
				view.Tickets[1].Number = ""
				_, err := r.Render(ctx, view)
				require.Error(t, err)
			})

			t.Run("a missing QR fails the whole render", func(t *testing.T) {
				view := ticketView(t, 2)
				view.Tickets[0].QRPNG = nil
				_, err := r.Render(ctx, view)
				require.Error(t, err)
				assert.Contains(t, err.Error(), view.Tickets[0].Number)
			})

			t.Run("cancelled context aborts", func(t *testing.T) {
				cancelled, cancel := context.WithCancel(ctx)
				cancel()
				_, err := r.Render(cancelled, ticketView(t, 1))
				require.Error(t, err)
			})
		})
	}
}

func TestPDFRenderer_Output(t *testing.T) {
	doc, err := NewPDFRenderer().Render(context.Background(), ticketView(t, 2))
	require.NoError(t, err)
	assert.Equal(t, "tickets.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")), "output should be a PDF")
}

func TestHTMLRenderer_Output(t *testing.T) {
	view := ticketView(t, 2)
	doc, err := NewHTMLRenderer().Render(context.Background(), view)
	require.NoError(t, err)
	assert.Equal(t, "tickets.html", doc.Filename)
	assert.Equal(t, "text/html; charset=utf-8", doc.ContentType)

	html := string(doc.Data)
	assert.Contains(t, html, "Jazz Night")
	for _, tk := range view.Tickets {
		assert.Contains(t, html, tk.Number)
		// QR images are embedded as data URIs: no network fetches needed.
		assert.Contains(t, html, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(tk.QRPNG))
	}
	// The base64 payload must be emitted verbatim, not entity-escaped.
	assert.NotContains(t, html, "&#43;")
	assert.Equal(t, 2, strings.Count(html, `class="ticket"`))
	assert.NotContains(t, html, "http://")
}

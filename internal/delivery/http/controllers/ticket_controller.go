package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"regexp"

	"mojotix/internal/delivery/http/helpers"
	"mojotix/internal/domain"
	"mojotix/internal/services"
)

// emailRegex matches a simple email format (local@domain with at least one dot in domain).
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// TicketController is the standalone ticket delivery surface: render a ticket
// bundle from an explicit payload and dispatch it, with no database involved.
// Responses use the service's own flat shape rather than the API envelope.
type TicketController struct {
	Logger       *slog.Logger
	Renderer     domain.TicketRenderer
	Credentials  domain.CredentialGenerator
	EmailService domain.EmailService
	Messenger    domain.Messenger
}

func NewTicketController(
	logger *slog.Logger,
	renderer domain.TicketRenderer,
	credentials domain.CredentialGenerator,
	emailService domain.EmailService,
	messenger domain.Messenger,
) *TicketController {
	return &TicketController{
		Logger:       logger,
		Renderer:     renderer,
		Credentials:  credentials,
		EmailService: emailService,
		Messenger:    messenger,
	}
}

// SendTicketRequest is the request body for POST /send-ticket and
// POST /send-ticket-inline.
type SendTicketRequest struct {
	Email             string   `json:"email"`
	Name              string   `json:"name"`
	EventTitle        string   `json:"eventTitle"`
	EventDate         string   `json:"eventDate"`
	EventTime         string   `json:"eventTime"`
	EventVenue        string   `json:"eventVenue"`
	TicketNumbers     []string `json:"ticketNumbers"`
	QRCodes           []string `json:"qrCodes"`
	TicketHolderNames []string `json:"ticketHolderNames"`
}

// Validate implements Validator. QR payloads and holder names are optional,
// but when present must pair up with the ticket numbers.
func (s SendTicketRequest) Validate() []string {
	var errs []string
	if !emailRegex.MatchString(s.Email) {
		errs = append(errs, "email is invalid")
	}
	if s.Name == "" {
		errs = append(errs, "name is required")
	}
	if s.EventTitle == "" {
		errs = append(errs, "eventTitle is required")
	}
	if len(s.TicketNumbers) == 0 {
		errs = append(errs, "ticketNumbers must not be empty")
	}
	for i, n := range s.TicketNumbers {
		if n == "" {
			errs = append(errs, fmt.Sprintf("ticketNumbers[%d] is empty", i))
		}
	}
	if len(s.QRCodes) > 0 && len(s.QRCodes) != len(s.TicketNumbers) {
		errs = append(errs, "qrCodes must match ticketNumbers in length")
	}
	if len(s.TicketHolderNames) > 0 && len(s.TicketHolderNames) != len(s.TicketNumbers) {
		errs = append(errs, "ticketHolderNames must match ticketNumbers in length")
	}
	return errs
}

// SendTicketResponse is the flat response for the ticket delivery endpoints.
type SendTicketResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Recipient string `json:"recipient"`
	Event     string `json:"event"`
}

// SendTicket godoc
// @Summary Render and email a ticket bundle
// @Description Renders a ticket document for the given ticket numbers and emails it to the recipient with one inline QR image per ticket and the document attached.
// @Tags delivery
// @Accept json
// @Produce json
// @Param payload body SendTicketRequest true "Ticket bundle"
// @Success 200 {object} controllers.SendTicketResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} controllers.SendTicketResponse
// @Router /send-ticket [post]
func (c *TicketController) SendTicket(w http.ResponseWriter, r *http.Request) {
	c.sendTicket(w, r, true)
}

// SendTicketInline godoc
// @Summary Email a ticket bundle, HTML only
// @Description Same contract as /send-ticket but without a document attachment: the tickets live entirely in the HTML body. Intended for browser-origin callers.
// @Tags delivery
// @Accept json
// @Produce json
// @Param payload body SendTicketRequest true "Ticket bundle"
// @Success 200 {object} controllers.SendTicketResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} controllers.SendTicketResponse
// @Router /send-ticket-inline [post]
func (c *TicketController) SendTicketInline(w http.ResponseWriter, r *http.Request) {
	c.sendTicket(w, r, false)
}

func (c *TicketController) sendTicket(w http.ResponseWriter, r *http.Request, attach bool) {
	var req SendTicketRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	fail := func(err error) {
		c.Logger.ErrorContext(r.Context(), "send-ticket failed", "recipient", req.Email, "event", req.EventTitle, "err", err)
		helpers.WriteJSON(w, http.StatusInternalServerError, SendTicketResponse{
			Success:   false,
			Error:     err.Error(),
			Recipient: req.Email,
			Event:     req.EventTitle,
		})
	}

	data := &domain.TicketEmailData{
		To:         req.Email,
		BookerName: req.Name,
		EventTitle: req.EventTitle,
		EventDate:  req.EventDate,
		EventTime:  req.EventTime,
		EventVenue: req.EventVenue,
	}
	view := &domain.BookingTicketsView{
		EventTitle: req.EventTitle,
		EventDate:  req.EventDate,
		EventTime:  req.EventTime,
		Venue:      req.EventVenue,
		BookerName: req.Name,
		PriceLabel: "-",
	}
	for i, number := range req.TicketNumbers {
		holder := req.Name
		if len(req.TicketHolderNames) > i && req.TicketHolderNames[i] != "" {
			holder = req.TicketHolderNames[i]
		}
		payload := number
		if len(req.QRCodes) > i && req.QRCodes[i] != "" {
			payload = req.QRCodes[i]
		}
		png, err := c.Credentials.Encode(payload)
		if err != nil {
			fail(fmt.Errorf("encode QR for ticket %s: %w", number, err))
			return
		}
		data.Tickets = append(data.Tickets, domain.TicketEmailItem{Number: number, HolderName: holder, QRPNG: png})
		view.Tickets = append(view.Tickets, domain.TicketCardView{Number: number, HolderName: holder, QRPNG: png})
	}

	if attach {
		doc, err := c.Renderer.Render(r.Context(), view)
		if err != nil {
			fail(fmt.Errorf("render ticket document: %w", err))
			return
		}
		data.Attachment = &domain.Attachment{
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			Data:        doc.Data,
		}
	}

	if _, err := c.EmailService.SendTicketBundle(r.Context(), data); err != nil {
		fail(err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, SendTicketResponse{
		Success:   true,
		Message:   fmt.Sprintf("Ticket email sent with %d ticket(s)", len(req.TicketNumbers)),
		Recipient: req.Email,
		Event:     req.EventTitle,
	})
}

// SendWhatsAppRequest is the request body for POST /send-whatsapp.
type SendWhatsAppRequest struct {
	To          string `json:"to"`
	EventTitle  string `json:"eventTitle"`
	TicketCount int    `json:"ticketCount"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Venue       string `json:"venue"`
}

// Validate implements Validator.
func (s SendWhatsAppRequest) Validate() []string {
	var errs []string
	if s.To == "" {
		errs = append(errs, "to is required")
	}
	if s.EventTitle == "" {
		errs = append(errs, "eventTitle is required")
	}
	if s.TicketCount < 1 {
		errs = append(errs, "ticketCount must be at least 1")
	}
	return errs
}

// SendWhatsAppResponse is the flat response for POST /send-whatsapp.
type SendWhatsAppResponse struct {
	Success    bool   `json:"success,omitempty"`
	MessageSid string `json:"messageSid,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SendWhatsApp godoc
// @Summary Send a booking summary over WhatsApp
// @Description Sends a templated booking summary message to the given phone number.
// @Tags delivery
// @Accept json
// @Produce json
// @Param payload body SendWhatsAppRequest true "Summary message"
// @Success 200 {object} controllers.SendWhatsAppResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} controllers.SendWhatsAppResponse
// @Router /send-whatsapp [post]
func (c *TicketController) SendWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req SendWhatsAppRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	body := services.TicketSummaryText(req.EventTitle, req.TicketCount, req.Date, req.Time, req.Venue)
	sid, err := c.Messenger.Send(r.Context(), req.To, body)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "send-whatsapp failed", "to", req.To, "err", err)
		helpers.WriteJSON(w, http.StatusInternalServerError, SendWhatsAppResponse{Error: err.Error()})
		return
	}
	helpers.WriteJSON(w, http.StatusOK, SendWhatsAppResponse{Success: true, MessageSid: sid})
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Health godoc
// @Summary Delivery service health check
// @Tags delivery
// @Produce json
// @Success 200 {object} controllers.HealthResponse
// @Router /health [get]
func (c *TicketController) Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, HealthResponse{Status: "OK", Service: "Email Service"})
}

package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"mojotix/internal/delivery/http/controllers"
	"mojotix/internal/delivery/http/middleware"
	"mojotix/internal/domain"
)

// Controllers bundles every controller the router mounts.
type Controllers struct {
	Auth       *controllers.AuthController
	Event      *controllers.EventController
	Booking    *controllers.BookingController
	Invitation *controllers.InvitationController
	Ticket     *controllers.TicketController
	Admin      *controllers.AdminController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(c Controllers, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier)
	optional := middleware.OptionalAuth(verifier)
	admin := middleware.RequireAdmin(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Events. Reads take optional auth: anonymous requests see public events
	// only, authenticated ones additionally see what the access gate allows.
	mux.HandleFunc("POST /events", auth(c.Event.CreateEvent))
	mux.HandleFunc("GET /events", optional(c.Event.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", optional(c.Event.GetEvent))
	mux.HandleFunc("GET /events/{eventID}/seats", optional(c.Event.ListSeats))
	mux.HandleFunc("GET /events/{eventID}/bookings", auth(c.Booking.ListEventBookings))
	mux.HandleFunc("POST /events/{eventID}/invitations", auth(c.Invitation.BulkInvite))
	mux.HandleFunc("GET /events/{eventID}/invitations", auth(c.Invitation.ListEventInvitations))

	// Bookings. Creation is open: checkout happens before any account exists.
	mux.HandleFunc("POST /bookings", c.Booking.CreateBooking)
	mux.HandleFunc("POST /bookings/{bookingID}/resend", auth(c.Booking.ResendTickets))

	// Invitations
	mux.HandleFunc("POST /invitations/{invitationID}/respond", auth(c.Invitation.Respond))
	mux.HandleFunc("DELETE /invitations/{invitationID}", admin(c.Invitation.Revoke))

	// Admin
	mux.HandleFunc("POST /admin/mark-attended", admin(c.Admin.MarkAttended))

	// Standalone delivery-service surface
	mux.HandleFunc("POST /send-ticket", c.Ticket.SendTicket)
	mux.HandleFunc("POST /send-ticket-inline", c.Ticket.SendTicketInline)
	mux.HandleFunc("POST /send-whatsapp", c.Ticket.SendWhatsApp)
	mux.HandleFunc("GET /health", c.Ticket.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

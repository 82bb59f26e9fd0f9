package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mojotix/internal/domain"
)

// fakeBookingRepo is an in-memory BookingRepository for tests. It records
// every delivery status transition per booking.
type fakeBookingRepo struct {
	byID      map[string]*domain.Booking
	nextID    int
	statusLog map[string][]domain.DeliveryStatus
	createErr error
	getErr    error
	updateErr error
	cancelErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		byID:      make(map[string]*domain.Booking),
		nextID:    1,
		statusLog: make(map[string][]domain.DeliveryStatus),
	}
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	b.ID = fmt.Sprintf("bk-%d", f.nextID)
	f.nextID++
	f.byID[b.ID] = b
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBookingRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Booking, error) {
	out := []*domain.Booking{}
	for _, b := range f.byID {
		if b.EventID == eventID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) UpdateDeliveryStatus(ctx context.Context, id string, status domain.DeliveryStatus, deliveryErr *string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.statusLog[id] = append(f.statusLog[id], status)
	if b, ok := f.byID[id]; ok {
		b.DeliveryStatus = status
		b.DeliveryError = deliveryErr
	}
	return nil
}

func (f *fakeBookingRepo) Cancel(ctx context.Context, id string, at time.Time) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	b, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.CancelledAt = &at
	return nil
}

// fakeTicketRepo is an in-memory TicketRepository for tests.
type fakeTicketRepo struct {
	byBooking   map[string][]*domain.Ticket
	nextID      int
	createErr   error
	listErr     error
	markCalls   []string
	markUpdated map[string]int64
	markErrs    map[string]error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		byBooking:   make(map[string][]*domain.Ticket),
		nextID:      1,
		markUpdated: make(map[string]int64),
		markErrs:    make(map[string]error),
	}
}

func (f *fakeTicketRepo) CreateBatch(ctx context.Context, tickets []*domain.Ticket) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, t := range tickets {
		t.ID = fmt.Sprintf("tk-%d", f.nextID)
		f.nextID++
		f.byBooking[t.BookingID] = append(f.byBooking[t.BookingID], t)
	}
	return nil
}

func (f *fakeTicketRepo) ListByBookingID(ctx context.Context, bookingID string) ([]*domain.Ticket, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.byBooking[bookingID], nil
}

func (f *fakeTicketRepo) MarkAttendedByEventID(ctx context.Context, eventID string, at time.Time) (int64, error) {
	f.markCalls = append(f.markCalls, eventID)
	if err := f.markErrs[eventID]; err != nil {
		return 0, err
	}
	return f.markUpdated[eventID], nil
}

// fakeCredentialGen mints predictable ticket numbers and trivial encodings.
type fakeCredentialGen struct {
	encodeErr error
}

func (f *fakeCredentialGen) Mint(bookedAt time.Time, seq int) string {
	return fmt.Sprintf("TN-%d-%03d", bookedAt.UnixMilli(), seq)
}

func (f *fakeCredentialGen) Encode(ticketNumber string) ([]byte, error) {
	if f.encodeErr != nil {
		return nil, f.encodeErr
	}
	return []byte("png:" + ticketNumber), nil
}

// fakeDocRenderer records the last view and returns a canned document.
type fakeDocRenderer struct {
	lastView  *domain.BookingTicketsView
	renderErr error
	calls     int
}

func (f *fakeDocRenderer) Render(ctx context.Context, view *domain.BookingTicketsView) (*domain.RenderedDocument, error) {
	f.calls++
	f.lastView = view
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	return &domain.RenderedDocument{
		Filename:    "tickets.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-fake"),
	}, nil
}

// fakeEmailService implements domain.EmailService. failFirst makes the first
// N SendTicketBundle calls fail, to exercise the retry loop.
type fakeEmailService struct {
	bundleCalls    int
	lastBundle     *domain.TicketEmailData
	failFirst      int
	bundleErr      error
	invitations    []*domain.InvitationEmailData
	invitationErrs map[string]error
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{invitationErrs: make(map[string]error)}
}

func (f *fakeEmailService) SendTicketBundle(ctx context.Context, data *domain.TicketEmailData) (*domain.DeliveryReceipt, error) {
	f.bundleCalls++
	f.lastBundle = data
	if f.bundleErr != nil {
		return nil, f.bundleErr
	}
	if f.bundleCalls <= f.failFirst {
		return nil, errors.New("smtp unavailable")
	}
	return &domain.DeliveryReceipt{MessageID: fmt.Sprintf("msg-%d", f.bundleCalls), SentAt: time.Now()}, nil
}

func (f *fakeEmailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if err := f.invitationErrs[data.Email]; err != nil {
		return err
	}
	f.invitations = append(f.invitations, data)
	return nil
}

// fakeMessenger records sends.
type fakeMessenger struct {
	to   []string
	body []string
	err  error
}

func (f *fakeMessenger) Send(ctx context.Context, toPhone, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.to = append(f.to, toPhone)
	f.body = append(f.body, body)
	return fmt.Sprintf("SM%d", len(f.to)), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type issuerFixture struct {
	bookings  *fakeBookingRepo
	tickets   *fakeTicketRepo
	email     *fakeEmailService
	renderer  *fakeDocRenderer
	messenger *fakeMessenger
	issuer    domain.TicketIssuer
}

func newIssuerFixture(cfg IssuerConfig) *issuerFixture {
	f := &issuerFixture{
		bookings:  newFakeBookingRepo(),
		tickets:   newFakeTicketRepo(),
		email:     newFakeEmailService(),
		renderer:  &fakeDocRenderer{},
		messenger: &fakeMessenger{},
	}
	f.issuer = NewTicketIssuer(f.bookings, f.tickets, &fakeCredentialGen{}, f.renderer, f.email, f.messenger, testLogger(), cfg)
	// No real sleeping in tests.
	f.issuer.(*ticketIssuer).sleep = func(context.Context, time.Duration) error { return nil }
	return f
}

func seedBooking(f *issuerFixture, quantity int, phone string) (*domain.Booking, *domain.Event) {
	booking := domain.NewBooking("ev-1", "Ada Lovelace", "ada@example.com", phone, quantity, 50, "pay-1", time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC))
	_ = f.bookings.Create(context.Background(), booking)
	event := &domain.Event{
		ID:        "ev-1",
		Title:     "Jazz Night",
		Date:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		StartTime: "19:30",
		Venue:     "Blue Hall",
		City:      "Lagos",
		Price:     25,
		IsActive:  true,
	}
	return booking, event
}

func TestTicketIssuer_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path walks the full pipeline", func(t *testing.T) {
		f := newIssuerFixture(IssuerConfig{MaxEmailAttempts: 3})
		booking, event := seedBooking(f, 2, "+2348000000001")

		err := f.issuer.Issue(ctx, booking, event)
		require.NoError(t, err)

		assert.Equal(t, domain.DeliveryStatusDelivered, booking.DeliveryStatus)
		assert.Equal(t, []domain.DeliveryStatus{
			domain.DeliveryStatusMinting,
			domain.DeliveryStatusRendering,
			domain.DeliveryStatusDispatching,
			domain.DeliveryStatusDelivered,
		}, f.bookings.statusLog[booking.ID])

		tickets := f.tickets.byBooking[booking.ID]
		require.Len(t, tickets, 2)
		assert.Equal(t, 1, tickets[0].Seq)
		assert.Equal(t, 2, tickets[1].Seq)
		assert.NotEqual(t, tickets[0].TicketNumber, tickets[1].TicketNumber)

		require.NotNil(t, f.email.lastBundle)
		assert.Equal(t, "ada@example.com", f.email.lastBundle.To)
		require.Len(t, f.email.lastBundle.Tickets, 2)
		assert.Equal(t, tickets[0].TicketNumber, f.email.lastBundle.Tickets[0].Number)
		require.NotNil(t, f.email.lastBundle.Attachment)
		assert.Equal(t, "tickets.pdf", f.email.lastBundle.Attachment.Filename)

		require.NotNil(t, f.renderer.lastView)
		assert.Equal(t, "Jazz Night", f.renderer.lastView.EventTitle)
		require.Len(t, f.renderer.lastView.Tickets, 2)
		assert.Equal(t, []byte("png:"+tickets[0].TicketNumber), f.renderer.lastView.Tickets[0].QRPNG)

		require.Len(t, f.messenger.to, 1)
		assert.Equal(t, "+2348000000001", f.messenger.to[0])
		assert.Contains(t, f.messenger.body[0], "Jazz Night")
		assert.Contains(t, f.messenger.body[0], "2 tickets")
	})

	t.Run("transient email failure is retried and succeeds", func(t *testing.T) {
		f := newIssuerFixture(IssuerConfig{MaxEmailAttempts: 3})
		booking, event := seedBooking(f, 1, "")
		f.email.failFirst = 2

		err := f.issuer.Issue(ctx, booking, event)
		require.NoError(t, err)
		assert.Equal(t, 3, f.email.bundleCalls)
		assert.Equal(t, domain.DeliveryStatusDelivered, booking.DeliveryStatus)
	})

	t.Run("email exhaustion lands in delivery_failed with tickets kept", func(t *testing.T) {
		f := newIssuerFixture(IssuerConfig{MaxEmailAttempts: 2})
		booking, event := seedBooking(f, 2, "")
		f.email.failFirst = 99

		err := f.issuer.Issue(ctx, booking, event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), booking.ID)
		assert.Contains(t, err.Error(), event.ID)

		assert.Equal(t, 2, f.email.bundleCalls)
		assert.Equal(t, domain.DeliveryStatusFailed, booking.DeliveryStatus)
		require.NotNil(t, booking.DeliveryError)
		assert.Contains(t, *booking.DeliveryError, "email failed after 2 attempts")
		// The minted tickets survive the failure for a later resend.
		assert.Len(t, f.tickets.byBooking[booking.ID], 2)
	})

	t.Run("re-issue reuses persisted tickets without re-minting", func(t *testing.T) {
		f := newIssuerFixture(IssuerConfig{MaxEmailAttempts: 1})
		booking, event := seedBooking(f, 2, "")
		f.email.failFirst = 1

		require.Error(t, f.issuer.Issue(ctx, booking, event))
		first := f.tickets.byBooking[booking.ID]
		require.Len(t, first, 2)
		firstNumbers := []string{first[0].TicketNumber, first[1].TicketNumber}

		require.NoError(t, f.issuer.Issue(ctx, booking, event))
		second := f.tickets.byBooking[booking.ID]
		require.Len(t, second, 2)
		assert.Equal(t, firstNumbers, []string{second[0].TicketNumber, second[1].TicketNumber})
		assert.Equal(t, domain.DeliveryStatusDelivered, booking.DeliveryStatus)
	})

	t.Run("delivered booking is never re-dispatched", func(t *testing.T) {
		f := newIssuerFixture(IssuerConfig{MaxEmailAttempts: 1})
		booking, event := seedBooking(f, 1, "")

		require.NoError(t, f.issuer.Issue(ctx, booking, event))
		sends := f.email.bundleCalls
		statusChanges := len(f.bookings.statusLog[booking.ID])

		require.NoError(t, f.issuer.Issue(ctx, booking, event))
		assert.Equal(t, sends, f.email.bundleCalls)
		assert.Equal(t, statusChanges, len(f.bookings.statusLog[booking.ID]))
	})

	t.Run("unreadable delivery state fails closed without dispatching", func(t *testing.T) {
		f := newIssuerFixture(IssuerConfig{MaxEmailAttempts: 1})
		booking, event := seedBooking(f, 1, "")
		f.bookings.getErr = errors.New("connection reset")

		err := f.issuer.Issue(ctx, booking, event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read delivery state")
		assert.Zero(t, f.email.bundleCalls)
		assert.Empty(t, f.bookings.statusLog[booking.ID])
	})

	t.Run("ticket count mismatch fails loudly", func(t *testing.T) {
		f := newIssuerFixture(IssuerConfig{MaxEmailAttempts: 1})
		booking, event := seedBooking(f, 3, "")
		_ = f.tickets.CreateBatch(ctx, []*domain.Ticket{
			{TicketNumber: "TN-1", BookingID: booking.ID, Seq: 1},
		})

		err := f.issuer.Issue(ctx, booking, event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 3")
		assert.Equal(t, domain.DeliveryStatusFailed, booking.DeliveryStatus)
		assert.Zero(t, f.email.bundleCalls)
	})

	t.Run("QR encode failure aborts before any email", func(t *testing.T) {
		f := newIssuerFixture(IssuerConfig{MaxEmailAttempts: 3})
		booking, event := seedBooking(f, 1, "")
		f.issuer.(*ticketIssuer).credentials = &fakeCredentialGen{encodeErr: errors.New("bad payload")}

		err := f.issuer.Issue(ctx, booking, event)
		require.Error(t, err)
		assert.Equal(t, domain.DeliveryStatusFailed, booking.DeliveryStatus)
		assert.Zero(t, f.email.bundleCalls)
		assert.Zero(t, f.renderer.calls)
	})

	t.Run("whatsapp failure does not block delivered", func(t *testing.T) {
		f := newIssuerFixture(IssuerConfig{MaxEmailAttempts: 1})
		booking, event := seedBooking(f, 1, "+2348000000002")
		f.messenger.err = errors.New("twilio down")

		require.NoError(t, f.issuer.Issue(ctx, booking, event))
		assert.Equal(t, domain.DeliveryStatusDelivered, booking.DeliveryStatus)
	})

	t.Run("no phone means no whatsapp send", func(t *testing.T) {
		f := newIssuerFixture(IssuerConfig{MaxEmailAttempts: 1})
		booking, event := seedBooking(f, 1, "")

		require.NoError(t, f.issuer.Issue(ctx, booking, event))
		assert.Empty(t, f.messenger.to)
	})
}

func TestTicketSummaryText(t *testing.T) {
	got := TicketSummaryText("Jazz Night", 1, "Wed, 01 Apr 2026", "19:30", "Blue Hall")
	assert.Contains(t, got, "1 ticket.")
	assert.Contains(t, got, "Wed, 01 Apr 2026 at 19:30")

	got = TicketSummaryText("Jazz Night", 3, "Wed, 01 Apr 2026", "", "Blue Hall")
	assert.Contains(t, got, "3 tickets")
	assert.NotContains(t, got, " at ")
}

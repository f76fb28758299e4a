package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking/internal/notify"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, msg notify.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func sampleBooking() BookingEvent {
	return BookingEvent{
		BookingID: 12, UserID: 3, RoomID: 7,
		HotelName: "Eiffel Grand", RoomNumber: "R101",
		CheckIn: "2025-06-01", CheckOut: "2025-06-03",
		TotalPrice: "180.00", Status: "Confirmed",
		OccurredAt: "2025-05-20T10:00:00Z",
	}
}

func TestFormatBookingLine(t *testing.T) {
	line := FormatBookingLine(BookingConfirmedQueue, sampleBooking())
	assert.Equal(t,
		`[2025-05-20T10:00:00Z] Booking confirmed | booking_id=12 | user_id=3 | room_id=7 | hotel="Eiffel Grand" | room="R101" | check_in=2025-06-01 | check_out=2025-06-03 | total=180.00 | status=Confirmed`+"\n",
		line)
	assert.True(t, strings.Contains(FormatBookingLine(BookingCancelledQueue, sampleBooking()), "Booking cancelled"))
}

func TestHandleAppendsBookingLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "booking.log")
	c := &Consumer{BookingLog: path}

	body, err := json.Marshal(sampleBooking())
	require.NoError(t, err)
	require.NoError(t, c.Handle(context.Background(), BookingConfirmedQueue, body))
	require.NoError(t, c.Handle(context.Background(), BookingCancelledQueue, body))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Booking confirmed")
	assert.Contains(t, lines[1], "Booking cancelled")
}

func TestHandleSendsWelcomeMail(t *testing.T) {
	ms := new(mockSender)
	ms.On("Send", mock.Anything, notify.Welcome("Ana", "ana@example.com")).Return(nil).Once()
	c := &Consumer{Mailer: ms}

	body, err := json.Marshal(UserRegisteredEvent{UserID: 1, Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	require.NoError(t, c.Handle(context.Background(), UserRegisteredQueue, body))
	ms.AssertExpectations(t)
}

func TestHandleRejectsBadInput(t *testing.T) {
	c := &Consumer{BookingLog: filepath.Join(t.TempDir(), "booking.log")}
	assert.Error(t, c.Handle(context.Background(), BookingConfirmedQueue, []byte("{")))
	assert.Error(t, c.Handle(context.Background(), "unknown", []byte("{}")))
	assert.Error(t, c.Handle(context.Background(), UserRegisteredQueue, []byte(`{"email":"a@b.c"}`)))
}

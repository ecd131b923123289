package mytickets

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/event-ticketing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
)

// MockService реализует интерфейс mytickets.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) MyTickets(ctx context.Context, caller models.Identity) ([]models.EnrichedTicket, error) {
	args := m.Called(ctx, caller)
	if res := args.Get(0); res != nil {
		return res.([]models.EnrichedTicket), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestMyTicketsHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		authenticated  bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name:          "билеты сериализуются вместе с данными события",
			authenticated: true,
			setupMock: func(m *MockService) {
				enriched := []models.EnrichedTicket{
					{
						Ticket: models.Ticket{
							ID: "tk-1", Event: "ev-1", User: "u1",
							TicketType: "GA", TicketPrice: 20, Quantity: 2,
							Status:     models.TicketStatusUsed,
							TicketCode: "EV-1-AAAA1111",
						},
						EventSummary: models.Summary{ID: "ev-1", Name: "Go Conference"},
					},
				}
				m.On("MyTickets", mock.Anything, models.Identity{UserID: "u1", Name: "alice", Role: models.RoleUser}).
					Return(enriched, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: []string{
				`"ticketCode":"EV-1-AAAA1111"`,
				`"isCheckedIn":true`,
				`"eventSummary"`,
				`"name":"Go Conference"`,
			},
		},
		{
			name:           "анонимный запрос отклоняется",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   []string{`"error":"unauthorized"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/tickets/my-tickets", nil)
			if tt.authenticated {
				ctx := context.WithValue(req.Context(), middlewarectx.UserID, "u1")
				ctx = context.WithValue(ctx, middlewarectx.Name, "alice")
				ctx = context.WithValue(ctx, middlewarectx.Role, models.RoleUser)
				req = req.WithContext(ctx)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for _, want := range tt.expectedBody {
				assert.True(t, strings.Contains(w.Body.String(), want),
					"response body should contain %s, got %s", want, w.Body.String())
			}

			mockService.AssertExpectations(t)
		})
	}
}

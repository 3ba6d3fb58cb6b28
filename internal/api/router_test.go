package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtline/court-reservation/internal/auth"
	"github.com/courtline/court-reservation/internal/booking"
	"github.com/courtline/court-reservation/internal/user"
)

type countingUsers struct {
	user.Service
	lookups atomic.Int32
}

func (u *countingUsers) IsAdmin(context.Context, string) (bool, error) {
	u.lookups.Add(1)
	return false, nil
}

type availabilityOnly struct {
	booking.Service
}

func (b *availabilityOnly) Availability(context.Context, string, string) ([]booking.Slot, error) {
	return nil, nil
}

func TestRouter_AvailabilitySkipsRoleLookup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwt := auth.NewJWTManager("router-test-secret", time.Hour)
	users := &countingUsers{}

	r := NewRouter(Config{
		Logger:                 zerolog.Nop(),
		JWTManager:             jwt,
		UserService:            users,
		BookingService:         &availabilityOnly{},
		AvailabilityRatePerMin: 100,
		MessageRatePerMin:      100,
	})

	token, err := jwt.GenerateAccessToken("member", "member@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/bookings/availability?court_id=c1&date=2025-06-10", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, users.lookups.Load())
}

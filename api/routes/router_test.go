package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"venuebook/internal/memstore"
	"venuebook/internal/shared/clock"
	"venuebook/internal/shared/config"
	"venuebook/internal/shared/database"
	"venuebook/internal/slots"
	"venuebook/internal/venues"
	"venuebook/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestEngine(t *testing.T) (*gin.Engine, *Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		APIPrefix:   "/api",
		APIVersion:  "v1",
		StoreDriver: "memory",
		JWT:         config.JWTConfig{Secret: testSecret},
		Engine: config.EngineConfig{
			OfferTTL:              30 * time.Minute,
			ClockSkewTolerance:    5 * time.Minute,
			DefaultDuration:       2 * time.Hour,
			OverlapBuffer:         6 * time.Hour,
			AdmissionMaxAttempts:  3,
			AdmissionRetryBackoff: time.Millisecond,
			LockWait:              time.Second,
		},
		Policy: config.DefaultPolicyConfig{CancellationEnabled: true, FreeCancellationHours: 24, PenaltyPercent: 50},
	}

	clk := clock.NewManual(time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC))
	container, err := NewContainer(cfg, nil, MemoryRepositories(memstore.New()), clk, logger.NewDiscard())
	require.NoError(t, err)

	engine := gin.New()
	NewRouter(container, nil).SetupRoutes(engine)
	return engine, container
}

func token(t *testing.T, partyID uuid.UUID, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": partyID.String(),
		"email":   "guest@example.test",
		"role":    role,
		"type":    "access",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func do(engine *gin.Engine, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

type apiResponse struct {
	Status string `json:"status"`
	Data   struct {
		Reservation struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"reservation"`
		QueueAhead int `json:"queue_ahead"`
	} `json:"data"`
	Errors struct {
		Code string `json:"code"`
	} `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var out apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestReservationEndpoint(t *testing.T) {
	engine, container := newTestEngine(t)
	ctx := context.Background()

	venue, err := container.Venues.CreateVenue(ctx, venues.CreateVenueRequest{Name: "Bistro"})
	require.NoError(t, err)
	capacity := 2
	slot, err := container.Slots.CreateSlot(ctx, venue.ID, slots.CreateSlotRequest{
		StartTime: time.Date(2030, 5, 3, 19, 0, 0, 0, time.UTC),
		Capacity:  &capacity,
	})
	require.NoError(t, err)

	first := uuid.New()
	w := do(engine, http.MethodPost, "/api/v1/reservations", token(t, first, "user"),
		map[string]interface{}{"slot_id": slot.ID, "party_size": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "confirmed", decode(t, w).Data.Reservation.Status)

	w = do(engine, http.MethodPost, "/api/v1/reservations", token(t, uuid.New(), "user"),
		map[string]interface{}{"slot_id": slot.ID, "party_size": 1})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, "waitlist", decode(t, w).Data.Reservation.Status)

	w = do(engine, http.MethodPost, "/api/v1/reservations", token(t, first, "user"),
		map[string]interface{}{"slot_id": slot.ID, "party_size": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_slot_booking", decode(t, w).Errors.Code)

	w = do(engine, http.MethodGet, "/api/v1/slots/"+slot.ID.String()+"/availability", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReservationEndpoint_RequiresToken(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := do(engine, http.MethodPost, "/api/v1/reservations", "", map[string]interface{}{"party_size": 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(engine, http.MethodPost, "/api/v1/reservations", "not-a-jwt", map[string]interface{}{"party_size": 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReservationEndpoint_RejectsBadPartySize(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := do(engine, http.MethodPost, "/api/v1/reservations", token(t, uuid.New(), "user"),
		map[string]interface{}{"slot_id": uuid.New(), "party_size": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_party_size", decode(t, w).Errors.Code)
}

func TestHealthEndpoint(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := do(engine, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"memory"`)
}

func TestHealthEndpoint_ReportsUnreachableRedis(t *testing.T) {
	_, container := newTestEngine(t)
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	engine := gin.New()
	NewRouter(container, &database.DB{Redis: rdb}).SetupRoutes(engine)

	w := do(engine, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"unhealthy"`)
	assert.Contains(t, w.Body.String(), `"redis":`)
}

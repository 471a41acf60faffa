package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"venuebook/internal/shared/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Errors     ErrorDetail `json:"errors"`
}

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondError(c, err)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRespondError(t *testing.T) {
	conflict := apperr.New("capacity_conflict", http.StatusConflict, "the slot is under heavy contention, retry shortly")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"business error", conflict, http.StatusConflict, "capacity_conflict"},
		{"wrapped business error", fmt.Errorf("%w: lock timeout", conflict), http.StatusConflict, "capacity_conflict"},
		{"shared forbidden", apperr.ErrForbidden, http.StatusForbidden, apperr.ErrForbidden.Code},
		{"unknown error", errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := respond(t, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tt.wantStatus, body.StatusCode)
			assert.Equal(t, tt.wantCode, body.Errors.Code)
		})
	}
}

func TestRespondError_HidesInternalDetail(t *testing.T) {
	_, body := respond(t, errors.New("pq: password authentication failed"))
	assert.Equal(t, "Internal server error", body.Message)
	assert.Empty(t, body.Errors.Detail)
}

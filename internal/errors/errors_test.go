package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Constructors that never attach a cause must still serialize; the embedded
// builder's own marshaler dereferences its cause unconditionally.
func TestAppErrorMarshalsWithoutCause(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{
			name:       "validation error",
			err:        NewValidationError("unknown role: wizard"),
			wantCode:   "VALIDATION_ERROR",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found error",
			err:        NewNotFoundError("project", "ghost"),
			wantCode:   "NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "rate limit error",
			err:        NewRateLimitError("60"),
			wantCode:   "RATE_LIMIT_EXCEEDED",
			wantStatus: http.StatusTooManyRequests,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.err)
			require.NoError(t, err)

			var payload map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &payload))
			assert.Equal(t, tt.wantCode, payload["code"])
			assert.Equal(t, float64(tt.wantStatus), payload["http_status"])
			assert.NotEmpty(t, payload["message"])
		})
	}
}

func TestAppErrorRendersThroughGin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RecoveryHandler())
	r.GET("/boom", func(c *gin.Context) {
		appErr := NewValidationError("unknown role: wizard")
		c.JSON(appErr.HTTPStatus, appErr)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/boom", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	assert.Contains(t, w.Body.String(), "unknown role: wizard")
}

func TestAppErrorMarshalsWithCause(t *testing.T) {
	appErr := NewNetworkError("upstream unreachable", assert.AnError)

	raw, err := json.Marshal(appErr)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "NETWORK_ERROR")
}

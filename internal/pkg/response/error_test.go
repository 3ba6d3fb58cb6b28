package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtline/court-reservation/internal/pkg/apperror"
)

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	notFound := apperror.New(http.StatusNotFound, "thing not found")

	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
		wantDetails bool
	}{
		{"app error", notFound, http.StatusNotFound, "thing not found", false},
		{"wrapped app error", fmt.Errorf("lookup: %w", notFound), http.StatusNotFound, "thing not found", false},
		{"details", notFound.WithDetails(map[string]any{"id": "1"}), http.StatusNotFound, "thing not found", true},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal server error", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			Error(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMessage, body.Error)
			assert.Equal(t, tt.wantDetails, body.Details != nil)
		})
	}
}

package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/andrelmts/taskhive/pkg/errors"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestSuccess(t *testing.T) {
	c, rec := newTestContext(t)

	Success(c, http.StatusOK, gin.H{"workspace_id": "abc"})

	require.Equal(t, http.StatusOK, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Nil(t, body.Error)
}

func TestErrorRendersAppError(t *testing.T) {
	c, rec := newTestContext(t)

	Error(c, appErrors.ErrGone)

	require.Equal(t, http.StatusGone, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, appErrors.ErrGone.Code, body.Error.Code)
}

func TestErrorIncludesDetails(t *testing.T) {
	c, rec := newTestContext(t)

	Error(c, appErrors.ErrForbidden.WithDetails(map[string]string{"your_email": "b@x.com"}))

	require.Equal(t, http.StatusForbidden, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "b@x.com", body.Error.Details["your_email"])
}

func TestErrorDefaultsToInternal(t *testing.T) {
	c, rec := newTestContext(t)

	Error(c, errors.New("raw failure"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, appErrors.ErrInternalServer.Code, body.Error.Code)
	// Raw error text must not leak to clients.
	require.NotContains(t, rec.Body.String(), "raw failure")
}

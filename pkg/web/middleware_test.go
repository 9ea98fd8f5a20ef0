package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderIdentity(t *testing.T) {
	testCases := []struct {
		name       string
		header     string
		expectedID string
		expectedOK bool
	}{
		{name: "header present", header: "user-1", expectedID: "user-1", expectedOK: true},
		{name: "header missing", header: "", expectedID: "", expectedOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var gotID string
			var gotOK bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID, gotOK = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(XUserId, tc.header)
			}
			rr := httptest.NewRecorder()

			// when
			HeaderIdentity(next).ServeHTTP(rr, req)

			// then
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.expectedID, gotID)
			assert.Equal(t, tc.expectedOK, gotOK)
		})
	}
}

func TestRecoverer(t *testing.T) {
	// given
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	rr := httptest.NewRecorder()

	// when
	Recoverer(logger)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	// then
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRedirect(t *testing.T) {
	// given
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rr := httptest.NewRecorder()

	// when
	Redirect(rr, logger, "/admin")

	// then
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin", rr.Header().Get("Location"))
	assert.JSONEq(t, `{"redirect":"/admin"}`, rr.Body.String())
}

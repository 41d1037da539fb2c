package borrowing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/testutil"
)

func newTestMux(t *testing.T) (*http.ServeMux, ledger) {
	l := newLedger(t)
	mux := http.NewServeMux()
	NewHTTPHandler(l.svc, 0).Register(mux)
	return mux, l
}

func serve(mux *http.ServeMux, method, path string) testutil.RecordResponse {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return testutil.RecordHTTPResponse(w)
}

func TestHTTPHandler_BorrowAndReturn(t *testing.T) {
	mux, l := newTestMux(t)
	l.addBook(t, "Dune", 1)

	resp := serve(mux, http.MethodPost, "/v1/books/1/borrow")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, float64(0), resp.Data().(map[string]any)["available_copies"])

	resp = serve(mux, http.MethodPost, "/v1/books/1/borrow")
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "NOT_BORROWABLE", resp.ErrorCode())

	resp = serve(mux, http.MethodGet, "/v1/books/1/unreturned")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, true, resp.Data().(map[string]any)["has_unreturned"])

	resp = serve(mux, http.MethodPost, "/v1/books/1/return")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, float64(1), resp.Data().(map[string]any)["available_copies"])

	resp = serve(mux, http.MethodPost, "/v1/books/1/return")
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "NOTHING_TO_RETURN", resp.ErrorCode())

	resp = serve(mux, http.MethodPost, "/v1/books/x/borrow")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHTTPHandler_History(t *testing.T) {
	mux, l := newTestMux(t)
	id := l.addBook(t, "Paged", 3)
	for range 3 {
		ok, err := l.svc.Borrow(context.Background(), id)
		require.NoError(t, err)
		require.True(t, ok)
	}

	resp := serve(mux, http.MethodGet, "/v1/borrowings?page=1&page_size=2")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.Data().([]any), 2)
	meta := resp.Body["meta"].(map[string]any)
	assert.Equal(t, float64(2), meta["total_pages"])
	assert.Equal(t, true, meta["has_next_page"])

	resp = serve(mux, http.MethodGet, "/v1/borrowings?q=nothing-matches")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, resp.Data())
}

func TestHTTPHandler_ArchiveFlow(t *testing.T) {
	mux, l := newTestMux(t)
	id := l.addBook(t, "Hamlet", 1)
	ok, err := l.svc.Borrow(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)

	resp := serve(mux, http.MethodPost, "/v1/borrowings/1/archive")
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = serve(mux, http.MethodGet, "/v1/borrowings/archived")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.Data().([]any), 1)

	resp = serve(mux, http.MethodGet, "/v1/borrowings/open")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, resp.Data())

	resp = serve(mux, http.MethodGet, "/v1/books/1/availability")
	assert.Equal(t, float64(1), resp.Data().(map[string]any)["available_copies"])

	resp = serve(mux, http.MethodPost, "/v1/borrowings/1/unarchive")
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = serve(mux, http.MethodPost, "/v1/borrowings/42/archive")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

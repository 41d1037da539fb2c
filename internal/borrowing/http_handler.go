package borrowing

import (
	"context"
	"net/http"

	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	service         *Service
	defaultPageSize int
}

func NewHTTPHandler(service *Service, defaultPageSize int) *HTTPHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	return &HTTPHandler{service: service, defaultPageSize: defaultPageSize}
}

// Register mounts the borrowing routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/books/{id}/borrow", h.Borrow)
	mux.HandleFunc("POST /v1/books/{id}/return", h.Return)
	mux.HandleFunc("GET /v1/books/{id}/availability", h.Availability)
	mux.HandleFunc("GET /v1/books/{id}/unreturned", h.Unreturned)
	mux.HandleFunc("GET /v1/borrowings", h.History)
	mux.HandleFunc("GET /v1/borrowings/open", h.Open)
	mux.HandleFunc("GET /v1/borrowings/archived", h.Archived)
	mux.HandleFunc("POST /v1/borrowings/{id}/archive", h.Archive)
	mux.HandleFunc("POST /v1/borrowings/{id}/unarchive", h.Unarchive)
}

// Borrow handles POST /v1/books/{id}/borrow. A refused borrow is a 409 so
// clients can tell it apart from success.
func (h *HTTPHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	ok, err := h.service.Borrow(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if !ok {
		httpx.JSONError(w, r, http.StatusConflict, "NOT_BORROWABLE", "Book is unavailable or does not exist", nil)
		return
	}
	h.writeAvailability(w, r, id)
}

// Return handles POST /v1/books/{id}/return
func (h *HTTPHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	ok, err := h.service.Return(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if !ok {
		httpx.JSONError(w, r, http.StatusConflict, "NOTHING_TO_RETURN", "Book has no open loan or does not exist", nil)
		return
	}
	h.writeAvailability(w, r, id)
}

// Availability handles GET /v1/books/{id}/availability
func (h *HTTPHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	h.writeAvailability(w, r, id)
}

func (h *HTTPHandler) writeAvailability(w http.ResponseWriter, r *http.Request, bookID int64) {
	n, err := h.service.AvailableCopies(r.Context(), bookID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"book_id": bookID, "available_copies": n}, nil)
}

// Unreturned handles GET /v1/books/{id}/unreturned
func (h *HTTPHandler) Unreturned(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	n, err := h.service.UnreturnedCount(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{
		"book_id":          id,
		"unreturned_count": n,
		"has_unreturned":   n > 0,
	}, nil)
}

// History handles GET /v1/borrowings
func (h *HTTPHandler) History(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := HistoryQuery{
		Search: query.Get("q"),
		Status: query.Get("status"),
		Date:   query.Get("date"),
	}
	page := httpx.QueryInt(r, "page", 1)
	pageSize := httpx.QueryInt(r, "page_size", h.defaultPageSize)
	if pageSize > 100 {
		pageSize = 100
	}

	result, err := h.service.HistoryPaginated(r.Context(), page, pageSize, q)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, result.Items, map[string]any{
		"page":              result.PageIndex,
		"page_size":         result.PageSize,
		"total":             result.TotalCount,
		"total_pages":       result.TotalPages,
		"has_previous_page": result.HasPreviousPage,
		"has_next_page":     result.HasNextPage,
	})
}

// Open handles GET /v1/borrowings/open
func (h *HTTPHandler) Open(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.UnreturnedTransactions(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, txs, map[string]any{"total": len(txs)})
}

// Archived handles GET /v1/borrowings/archived
func (h *HTTPHandler) Archived(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.ArchivedTransactions(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, txs, map[string]any{"total": len(txs)})
}

// Archive handles POST /v1/borrowings/{id}/archive
func (h *HTTPHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.toggleArchive(w, r, h.service.Archive)
}

// Unarchive handles POST /v1/borrowings/{id}/unarchive
func (h *HTTPHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	h.toggleArchive(w, r, h.service.Unarchive)
}

func (h *HTTPHandler) toggleArchive(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id int64) (bool, error)) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	ok, err := op(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if !ok {
		httpx.WriteError(w, r, ErrTransactionNotFound)
		return
	}
	httpx.JSONNoContent(w)
}

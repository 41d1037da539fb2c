package book

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"libraryapi/internal/apperr"
	"libraryapi/internal/blobstore"
	"libraryapi/internal/httpx"
)

const coverField = "cover"

type HTTPHandler struct {
	service       *Service
	maxUploadSize int64
}

func NewHTTPHandler(service *Service, maxUploadSize int64) *HTTPHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = blobstore.DefaultMaxBytes
	}
	return &HTTPHandler{service: service, maxUploadSize: maxUploadSize}
}

// Register mounts the book routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/books", h.ListActive)
	mux.HandleFunc("GET /v1/books/deleted", h.ListDeleted)
	mux.HandleFunc("GET /v1/books/{id}", h.GetByID)
	mux.HandleFunc("POST /v1/books", h.Create)
	mux.HandleFunc("PUT /v1/books/{id}", h.Update)
	mux.HandleFunc("DELETE /v1/books/{id}", h.Delete)
	mux.HandleFunc("GET /v1/books/{id}/delete-info", h.DeleteInfo)
}

// ListActive handles GET /v1/books
func (h *HTTPHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListActiveWithAvailability(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"total": len(books)})
}

// ListDeleted handles GET /v1/books/deleted
func (h *HTTPHandler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListDeleted(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"total": len(books)})
}

// GetByID handles GET /v1/books/{id}
func (h *HTTPHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	b, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Create handles POST /v1/books as multipart/form-data with a cover file.
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, cover, err := h.readForm(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	b, err := h.service.Create(r.Context(), in, cover)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, b)
}

// Update handles PUT /v1/books/{id}. The cover file is optional.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	in, cover, err := h.readForm(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	b, err := h.service.Update(r.Context(), id, in, cover)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Delete handles DELETE /v1/books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

// DeleteInfo handles GET /v1/books/{id}/delete-info
func (h *HTTPHandler) DeleteInfo(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	info, err := h.service.GetDeleteInfo(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, info, nil)
}

func (h *HTTPHandler) readForm(r *http.Request) (Input, *blobstore.Upload, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			return Input{}, nil, badForm(err)
		}
	} else if err := r.ParseForm(); err != nil {
		return Input{}, nil, badForm(err)
	}

	in := Input{
		Title:       r.FormValue("title"),
		Author:      r.FormValue("author"),
		Description: r.FormValue("description"),
		Genre:       Genre(r.FormValue("genre")),
	}
	if raw := strings.TrimSpace(r.FormValue("total_copies")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Input{}, nil, apperr.Validation("invalid book",
				apperr.FieldError{Field: "total_copies", Message: "total_copies must be a number"})
		}
		in.TotalCopies = n
	}

	if r.MultipartForm == nil {
		return in, nil, nil
	}
	file, header, err := r.FormFile(coverField)
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, nil
	}
	if err != nil {
		return Input{}, nil, badForm(err)
	}
	defer file.Close()

	cover, err := readUpload(file, header, h.maxUploadSize)
	if err != nil {
		return Input{}, nil, err
	}
	return in, cover, nil
}

func readUpload(file multipart.File, header *multipart.FileHeader, limit int64) (*blobstore.Upload, error) {
	content, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, badForm(err)
	}
	return &blobstore.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func badForm(err error) error {
	return apperr.Validation("invalid form: "+err.Error())
}

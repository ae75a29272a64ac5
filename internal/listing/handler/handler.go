// Package handler exposes the listing pipeline over HTTP. Reads are public;
// every mutation sits behind authentication, with ownership enforced one
// layer down in the service.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"roost/internal/listing"
	"roost/internal/media"
	"roost/internal/platform/middleware"
	"roost/internal/transport/http/shared"
	dErrors "roost/pkg/domain-errors"
	"roost/pkg/requestcontext"
)

// maxUploadBytes caps the in-memory portion of a multipart parse; larger
// files spill to disk per net/http semantics.
const maxUploadBytes = 10 << 20

// Service defines the listing operations the transport needs.
type Service interface {
	List(ctx context.Context) ([]listing.Listing, error)
	Get(ctx context.Context, id string) (listing.WithOwner, error)
	Create(ctx context.Context, ownerID string, form listing.Form, upload *media.Upload) (listing.Listing, error)
	Update(ctx context.Context, requesterID, id string, form listing.Form, upload *media.Upload) (listing.Listing, error)
	Delete(ctx context.Context, requesterID, id string) error
}

type Handler struct {
	logger   *slog.Logger
	listings Service
	auth     middleware.TokenValidator
	returnTo middleware.ReturnToRecorder
	loginURL string
}

func New(listings Service, auth middleware.TokenValidator, returnTo middleware.ReturnToRecorder, loginURL string, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		listings: listings,
		auth:     auth,
		returnTo: returnTo,
		loginURL: loginURL,
	}
}

// Register mounts the listing routes. Mutations run behind RequireAuth and a
// longer timeout because they carry file uploads.
func (h *Handler) Register(r chi.Router) {
	r.Get("/listings", h.handleIndex)
	r.Get("/listings/{id}", h.handleShow)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.RequireAuth(h.auth, h.returnTo, h.loginURL, h.logger))
		r.Post("/listings", h.handleCreate)
		r.Put("/listings/{id}", h.handleUpdate)
		r.Delete("/listings/{id}", h.handleDelete)
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "could not list listings", "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"listings": listings})
}

func (h *Handler) handleShow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	found, err := h.listings.Get(r.Context(), id)
	if err != nil {
		if dErrors.CodeOf(err) != dErrors.CodeNotFound {
			h.logger.ErrorContext(r.Context(), "could not load listing", "listing_id", id, "error", err)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID == "" {
		h.logger.ErrorContext(ctx, "user id missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx))
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	form, upload, cleanup, err := parseListingForm(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	defer cleanup()

	created, err := h.listings.Create(ctx, userID, form, upload)
	if err != nil {
		h.logFailure(ctx, "create listing failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"listing":  created,
		"redirect": "/listings/" + created.ID,
	})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	userID := requestcontext.UserID(ctx)

	form, upload, cleanup, err := parseListingForm(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	defer cleanup()

	updated, err := h.listings.Update(ctx, userID, id, form, upload)
	if err != nil {
		h.logFailure(ctx, "update listing failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"listing":  updated,
		"redirect": "/listings/" + id,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.listings.Delete(ctx, requestcontext.UserID(ctx), id); err != nil {
		h.logFailure(ctx, "delete listing failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"redirect": "/listings"})
}

// logFailure keeps expected outcomes (bad input, denied, missing) at warn and
// real faults at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInvalidInput, dErrors.CodeForbidden, dErrors.CodeNotFound, dErrors.CodeUnprocessable:
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	default:
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	}
}

// parseListingForm reads the multipart body. Scalar fields arrive grouped
// under listing[...]; the file part is named image and is optional here, the
// service decides whether its absence is an error. The returned cleanup
// closes the file handle and must run after the service call.
func parseListingForm(r *http.Request) (listing.Form, *media.Upload, func(), error) {
	noop := func() {}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return listing.Form{}, nil, noop, dErrors.Wrap(dErrors.CodeInvalidInput, "request body must be multipart form data", err)
	}

	form := listing.Form{
		Title:       r.FormValue("listing[title]"),
		Description: r.FormValue("listing[description]"),
		PriceRaw:    r.FormValue("listing[price]"),
		Location:    r.FormValue("listing[location]"),
		Country:     r.FormValue("listing[country]"),
	}
	// Parse errors surface through validation of the raw value.
	form.Price, _ = strconv.ParseFloat(form.PriceRaw, 64)

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return form, nil, noop, nil
		}
		return listing.Form{}, nil, noop, dErrors.Wrap(dErrors.CodeInvalidInput, "could not read image upload", err)
	}

	upload := &media.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}
	return form, upload, fileCloser(file), nil
}

func fileCloser(f multipart.File) func() {
	return func() { _ = f.Close() }
}

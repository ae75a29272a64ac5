// Package service sequences the listing pipeline: validate, authorize, ingest
// the image, geocode the address, persist, notify. Within one request the
// steps are strictly sequential; a failed step aborts before any write so no
// partial listing is ever persisted.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"roost/internal/auth"
	"roost/internal/geocode"
	"roost/internal/listing"
	"roost/internal/listing/metrics"
	"roost/internal/media"
	"roost/internal/notify"
	dErrors "roost/pkg/domain-errors"
	audit "roost/pkg/platform/audit"
	"roost/pkg/platform/sentinel"
	"roost/pkg/requestcontext"
)

// GeocodePolicy decides whether editing a listing's location re-derives its
// coordinates.
type GeocodePolicy string

const (
	// GeocodeNever keeps the creation-time coordinates for the life of the
	// record, even when the address changes.
	GeocodeNever GeocodePolicy = "never"
	// GeocodeAlways re-resolves on every update.
	GeocodeAlways GeocodePolicy = "always"
	// GeocodeIfChanged re-resolves only when the submitted location differs
	// from the stored one.
	GeocodeIfChanged GeocodePolicy = "if-changed"
)

// ParseGeocodePolicy maps a config string onto a policy, defaulting to
// if-changed.
func ParseGeocodePolicy(s string) GeocodePolicy {
	switch GeocodePolicy(s) {
	case GeocodeNever, GeocodeAlways, GeocodeIfChanged:
		return GeocodePolicy(s)
	default:
		return GeocodeIfChanged
	}
}

// Store is the listing repository contract.
type Store interface {
	Create(ctx context.Context, l listing.Listing) (listing.Listing, error)
	FindByID(ctx context.Context, id string) (listing.Listing, error)
	FindAll(ctx context.Context) ([]listing.Listing, error)
	UpdateByID(ctx context.Context, id string, patch listing.Patch) (listing.Listing, error)
	DeleteByID(ctx context.Context, id string) error
}

// ProfileResolver expands an owner reference to its public profile.
type ProfileResolver interface {
	Profile(ctx context.Context, userID string) (auth.PublicProfile, error)
}

// AuditSink receives fire-and-forget audit events.
type AuditSink interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service is the pipeline orchestrator. Backends are injected so tests can
// substitute fakes; there are no ambient globals.
type Service struct {
	store    Store
	storage  media.Storage
	geocoder geocode.Geocoder
	profiles ProfileResolver
	notifier notify.Notifier
	auditor  AuditSink
	logger   *slog.Logger
	metrics  *metrics.Metrics
	policy   GeocodePolicy
	tracer   trace.Tracer
}

func New(
	store Store,
	storage media.Storage,
	geocoder geocode.Geocoder,
	profiles ProfileResolver,
	notifier notify.Notifier,
	auditor AuditSink,
	logger *slog.Logger,
	m *metrics.Metrics,
	policy GeocodePolicy,
) *Service {
	return &Service{
		store:    store,
		storage:  storage,
		geocoder: geocoder,
		profiles: profiles,
		notifier: notifier,
		auditor:  auditor,
		logger:   logger,
		metrics:  m,
		policy:   policy,
		tracer:   otel.Tracer("roost/listing"),
	}
}

// List returns all listings for the index page.
func (s *Service) List(ctx context.Context) ([]listing.Listing, error) {
	listings, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "could not load listings", err)
	}
	return listings, nil
}

// Get loads one listing with its owner reference expanded. A missing record
// is an outcome, not an exception.
func (s *Service) Get(ctx context.Context, id string) (listing.WithOwner, error) {
	l, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return listing.WithOwner{}, dErrors.New(dErrors.CodeNotFound, "listing does not exist")
		}
		return listing.WithOwner{}, dErrors.Wrap(dErrors.CodeInternal, "could not load listing", err)
	}

	owner, err := s.profiles.Profile(ctx, l.OwnerID)
	if err != nil {
		// The listing is still displayable; the owner profile degrades to its id.
		s.logger.WarnContext(ctx, "could not expand listing owner",
			"listing_id", l.ID, "owner_id", l.OwnerID, "error", err)
		owner = auth.PublicProfile{ID: l.OwnerID}
	}
	return listing.WithOwner{Listing: l, Owner: owner}, nil
}

// Create runs the full pipeline. The record is constructed in memory and
// saved only after every prior step succeeded, so any failure leaves no
// partial listing behind. The uploaded object can be orphaned when geocoding
// fails afterwards; that is accepted and logged rather than rolled back.
func (s *Service) Create(ctx context.Context, ownerID string, form listing.Form, upload *media.Upload) (listing.Listing, error) {
	ctx, span := s.tracer.Start(ctx, "listing.Create")
	defer span.End()

	if err := listing.ValidateForm(form); err != nil {
		s.metrics.CreateFailures.WithLabelValues("validate").Inc()
		return listing.Listing{}, err
	}
	if upload == nil {
		s.metrics.CreateFailures.WithLabelValues("validate").Inc()
		return listing.Listing{}, dErrors.New(dErrors.CodeInvalidInput, "image is required")
	}

	image, err := s.storage.Put(ctx, *upload)
	if err != nil {
		s.metrics.CreateFailures.WithLabelValues("ingest").Inc()
		s.fail(ctx, "we could not store your image, please try again")
		return listing.Listing{}, dErrors.Wrap(dErrors.CodeUnavailable, "image upload failed", err)
	}

	geometry, err := s.geocoder.Forward(ctx, form.Location)
	if err != nil {
		s.metrics.CreateFailures.WithLabelValues("geocode").Inc()
		s.logger.WarnContext(ctx, "create aborted after upload, object orphaned",
			"image_key", image.Key, "location", form.Location, "error", err)
		s.fail(ctx, "we could not locate that address, please check it and try again")
		if errors.Is(err, sentinel.ErrNoMatch) {
			return listing.Listing{}, dErrors.Wrap(dErrors.CodeUnprocessable, "address could not be resolved", err)
		}
		return listing.Listing{}, dErrors.Wrap(dErrors.CodeUnavailable, "geocoding failed", err)
	}

	now := requestcontext.Now(ctx)
	created, err := s.store.Create(ctx, listing.Listing{
		Title:       form.Title,
		Description: form.Description,
		Price:       form.Price,
		Location:    form.Location,
		Country:     form.Country,
		Image:       &image,
		Geometry:    &geometry,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.metrics.CreateFailures.WithLabelValues("persist").Inc()
		s.fail(ctx, "we could not save your listing, please try again")
		return listing.Listing{}, dErrors.Wrap(dErrors.CodeInternal, "could not save listing", err)
	}

	span.SetAttributes(attribute.String("listing.id", created.ID))
	s.metrics.Created.Inc()
	s.auditor.Emit(ctx, audit.Event{
		UserID:  ownerID,
		Subject: created.ID,
		Action:  audit.ActionListingCreated,
	})
	s.notifier.Notify(ctx, requestcontext.SessionID(ctx), notify.SeveritySuccess, "New listing created")
	return created, nil
}

// Update mutates an existing listing. The complete patch, including an
// optionally re-ingested image and re-derived geometry, is assembled in
// memory first so persistence is one write with no inconsistent window.
func (s *Service) Update(ctx context.Context, requesterID, id string, form listing.Form, upload *media.Upload) (listing.Listing, error) {
	ctx, span := s.tracer.Start(ctx, "listing.Update")
	defer span.End()

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.fail(ctx, "listing does not exist")
			return listing.Listing{}, dErrors.New(dErrors.CodeNotFound, "listing does not exist")
		}
		return listing.Listing{}, dErrors.Wrap(dErrors.CodeInternal, "could not load listing", err)
	}

	if err := s.requireOwner(ctx, current, requesterID); err != nil {
		return listing.Listing{}, err
	}

	if err := listing.ValidateForm(form); err != nil {
		return listing.Listing{}, err
	}

	patch := listing.Patch{
		Title:       form.Title,
		Description: form.Description,
		Price:       form.Price,
		Location:    form.Location,
		Country:     form.Country,
		UpdatedAt:   requestcontext.Now(ctx),
	}

	if upload != nil {
		image, err := s.storage.Put(ctx, *upload)
		if err != nil {
			s.fail(ctx, "we could not store your image, please try again")
			return listing.Listing{}, dErrors.Wrap(dErrors.CodeUnavailable, "image upload failed", err)
		}
		patch.Image = &image
	}

	if s.shouldGeocode(current, form) {
		geometry, err := s.geocoder.Forward(ctx, form.Location)
		if err != nil {
			s.fail(ctx, "we could not locate that address, please check it and try again")
			if errors.Is(err, sentinel.ErrNoMatch) {
				return listing.Listing{}, dErrors.Wrap(dErrors.CodeUnprocessable, "address could not be resolved", err)
			}
			return listing.Listing{}, dErrors.Wrap(dErrors.CodeUnavailable, "geocoding failed", err)
		}
		patch.Geometry = &geometry
	}

	updated, err := s.store.UpdateByID(ctx, id, patch)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Deleted between load and write; same outcome as the early check.
			s.fail(ctx, "listing does not exist")
			return listing.Listing{}, dErrors.New(dErrors.CodeNotFound, "listing does not exist")
		}
		s.fail(ctx, "we could not save your changes, please try again")
		return listing.Listing{}, dErrors.Wrap(dErrors.CodeInternal, "could not update listing", err)
	}

	span.SetAttributes(attribute.String("listing.id", id))
	s.metrics.Updated.Inc()
	s.auditor.Emit(ctx, audit.Event{
		UserID:  requesterID,
		Subject: id,
		Action:  audit.ActionListingUpdated,
	})
	s.notifier.Notify(ctx, requestcontext.SessionID(ctx), notify.SeveritySuccess, "Listing updated")
	return updated, nil
}

// Delete removes a listing the requester owns. Deleting an id that no longer
// exists succeeds as a no-op so the operation is idempotent.
func (s *Service) Delete(ctx context.Context, requesterID, id string) error {
	ctx, span := s.tracer.Start(ctx, "listing.Delete")
	defer span.End()

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.notifier.Notify(ctx, requestcontext.SessionID(ctx), notify.SeveritySuccess, "Listing deleted")
			return nil
		}
		return dErrors.Wrap(dErrors.CodeInternal, "could not load listing", err)
	}

	if err := s.requireOwner(ctx, current, requesterID); err != nil {
		return err
	}

	if err := s.store.DeleteByID(ctx, id); err != nil {
		s.fail(ctx, "we could not delete the listing, please try again")
		return dErrors.Wrap(dErrors.CodeInternal, "could not delete listing", err)
	}

	// Best-effort cleanup of the stored image; the record is already gone.
	if current.Image != nil {
		if err := s.storage.Remove(ctx, current.Image.Key); err != nil {
			s.logger.WarnContext(ctx, "could not remove listing image",
				"listing_id", id, "image_key", current.Image.Key, "error", err)
		}
	}

	s.metrics.Deleted.Inc()
	s.auditor.Emit(ctx, audit.Event{
		UserID:  requesterID,
		Subject: id,
		Action:  audit.ActionListingDeleted,
	})
	s.notifier.Notify(ctx, requestcontext.SessionID(ctx), notify.SeveritySuccess, "Listing deleted")
	return nil
}

// requireOwner enforces the ownership guard: the requester must be the
// identity fixed at creation. Violations surface as a user-visible notice,
// not a hard failure, and short-circuit before any mutation.
func (s *Service) requireOwner(ctx context.Context, l listing.Listing, requesterID string) error {
	if l.OwnerID == requesterID {
		return nil
	}
	s.metrics.OwnershipDenied.Inc()
	s.auditor.Emit(ctx, audit.Event{
		UserID:  requesterID,
		Subject: l.ID,
		Action:  audit.ActionOwnershipDenied,
	})
	s.fail(ctx, "you do not have permission to modify this listing")
	return dErrors.New(dErrors.CodeForbidden, "you do not have permission to modify this listing")
}

func (s *Service) shouldGeocode(current listing.Listing, form listing.Form) bool {
	switch s.policy {
	case GeocodeAlways:
		return true
	case GeocodeIfChanged:
		return form.Location != current.Location
	default:
		return false
	}
}

// fail queues the generic failure notice for the session; delivery is
// fire-and-forget.
func (s *Service) fail(ctx context.Context, message string) {
	s.notifier.Notify(ctx, requestcontext.SessionID(ctx), notify.SeverityError, message)
}

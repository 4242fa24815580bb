// Package service holds the application use cases of the thing context.
package service

import (
	"context"
	"errors"
	"log/slog"

	"scaffold/internal/thing/models"
	"scaffold/pkg/domain"
	dErrors "scaffold/pkg/domain-errors"
	"scaffold/pkg/platform/sentinel"
	"scaffold/pkg/requestcontext"
)

// Repository is the persistence port used by the use cases.
type Repository interface {
	Save(ctx context.Context, thing *models.Thing) error
	Find(ctx context.Context, id models.ThingID) (*models.Thing, error)
}

// EventBus is the publishing port used by the use cases.
type EventBus interface {
	Publish(ctx context.Context, events ...domain.Event) error
}

// CreateThingRequest carries unvalidated input.
type CreateThingRequest struct {
	ID   string
	Name string
}

// CreateThing creates (or replaces) a Thing and publishes the events it raised.
type CreateThing struct {
	repo   Repository
	bus    EventBus
	logger *slog.Logger
}

func NewCreateThing(repo models.Repository, bus domain.EventBus, logger *slog.Logger) *CreateThing {
	return &CreateThing{repo: repo, bus: bus, logger: logger}
}

func (uc *CreateThing) Execute(ctx context.Context, req CreateThingRequest) error {
	id, err := models.ParseThingID(req.ID)
	if err != nil {
		return err
	}
	name, err := models.ParseThingName(req.Name)
	if err != nil {
		return err
	}

	thing := models.Create(id, name, domain.WithOccurredOn(requestcontext.Now(ctx).UTC()))
	if err := uc.repo.Save(ctx, thing); err != nil {
		return translateStoreError(err, "failed to save thing")
	}

	if err := uc.bus.Publish(ctx, thing.PullDomainEvents()...); err != nil {
		uc.logger.ErrorContext(ctx, "failed to publish thing events",
			"thing_id", id.String(),
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to publish events")
	}

	uc.logger.InfoContext(ctx, "thing created", "thing_id", id.String())
	return nil
}

// ThingView is the read model returned by FindThing.
type ThingView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FindThing loads one Thing by id.
type FindThing struct {
	repo Repository
}

func NewFindThing(repo models.Repository) *FindThing {
	return &FindThing{repo: repo}
}

func (uc *FindThing) Execute(ctx context.Context, rawID string) (*ThingView, error) {
	id, err := models.ParseThingID(rawID)
	if err != nil {
		return nil, err
	}
	thing, err := uc.repo.Find(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "failed to load thing")
	}
	return &ThingView{ID: thing.ID().String(), Name: thing.Name().String()}, nil
}

func translateStoreError(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "thing not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "thing was modified concurrently")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

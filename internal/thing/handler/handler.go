// Package handler exposes the thing use cases as HTTP controllers.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scaffold/internal/thing/service"
	"scaffold/pkg/platform/httputil"
)

type thingCreator interface {
	Execute(ctx context.Context, req service.CreateThingRequest) error
}

type thingFinder interface {
	Execute(ctx context.Context, id string) (*service.ThingView, error)
}

// PutThingRequest is the body of PUT /things/{id}.
type PutThingRequest struct {
	Name string `json:"name"`
}

// PutThing handles PUT /things/{id}.
type PutThing struct {
	create thingCreator
}

func NewPutThing(create *service.CreateThing) *PutThing {
	return &PutThing{create: create}
}

func (h *PutThing) Handle(w http.ResponseWriter, r *http.Request) error {
	var req PutThingRequest
	if err := httputil.DecodeJSON(r.Body, &req); err != nil {
		return err
	}
	if err := h.create.Execute(r.Context(), service.CreateThingRequest{
		ID:   chi.URLParam(r, "id"),
		Name: req.Name,
	}); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GetThing handles GET /things/{id}.
type GetThing struct {
	find thingFinder
}

func NewGetThing(find *service.FindThing) *GetThing {
	return &GetThing{find: find}
}

func (h *GetThing) Handle(w http.ResponseWriter, r *http.Request) error {
	view, err := h.find.Execute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, view)
	return nil
}

// PutThingSchema documents the PUT body for the route listing.
var PutThingSchema = map[string]any{
	"body": map[string]any{
		"type":     "object",
		"required": []string{"name"},
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "minLength": 1, "maxLength": 128},
		},
	},
}

package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gdgscriet/studyjam-server/internal/events"
)

func (s *Server) registerEventRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listEvents",
		Method:      http.MethodGet,
		Path:        "/api/v1/events",
		Summary:     "List events",
		Description: "Community events ordered by start time, with phase and redirect notice",
		Tags:        []string{"Events"},
	}, s.handleListEvents)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEvent",
		Method:      http.MethodGet,
		Path:        "/api/v1/events/{slug}",
		Summary:     "Get event",
		Tags:        []string{"Events"},
	}, s.handleGetEvent)
}

// ListEventsInput selects which events to list.
type ListEventsInput struct {
	IncludeEnded bool `query:"include_ended" doc:"Include events that have ended"`
}

// ListEventsOutput wraps the event list for Huma.
type ListEventsOutput struct {
	Body []events.View
}

func (s *Server) handleListEvents(_ context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	return &ListEventsOutput{Body: s.services.Events.List(input.IncludeEnded)}, nil
}

// GetEventInput identifies one event.
type GetEventInput struct {
	Slug string `path:"slug" minLength:"1" maxLength:"100" doc:"Event slug"`
}

// GetEventOutput wraps an event for Huma.
type GetEventOutput struct {
	Body events.View
}

func (s *Server) handleGetEvent(_ context.Context, input *GetEventInput) (*GetEventOutput, error) {
	v, err := s.services.Events.Get(input.Slug)
	if err != nil {
		return nil, err
	}
	return &GetEventOutput{Body: v}, nil
}

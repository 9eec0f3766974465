package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gdgscriet/studyjam-server/internal/domain"
)

func (s *Server) registerBotRoutes() {
	security := []map[string][]string{{"bearer": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID: "getBotStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/bot/status",
		Summary:     "Bot status",
		Description: "Scraper bot state from the participant API, plus the run this server is watching",
		Tags:        []string{"Bot"},
		Security:    security,
	}, s.handleGetBotStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "triggerBot",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/bot/trigger",
		Summary:     "Trigger bot",
		Description: "Starts a scrape and watches it until the bot is idle, then reloads participants",
		Tags:        []string{"Bot"},
		Security:    security,
	}, s.handleTriggerBot)
}

// BotStatusInput carries the bot API key.
type BotStatusInput struct {
	APIKey string `header:"X-API-Key" doc:"Bot API key; falls back to the configured key"`
}

// BotStatusResponse is the remote bot state plus the local poller.
type BotStatusResponse struct {
	domain.BotStatus `json:",inline"`
	CurrentRun       *domain.BotRun `json:"current_run,omitempty"`
}

// BotStatusOutput wraps the bot status for Huma.
type BotStatusOutput struct {
	Body BotStatusResponse
}

func (s *Server) handleGetBotStatus(ctx context.Context, input *BotStatusInput) (*BotStatusOutput, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	status, err := s.services.Bot.Status(ctx, input.APIKey)
	if err != nil {
		return nil, err
	}
	return &BotStatusOutput{Body: BotStatusResponse{
		BotStatus:  status,
		CurrentRun: s.services.Bot.Current(),
	}}, nil
}

// TriggerBotInput selects the scrape to start.
type TriggerBotInput struct {
	APIKey     string `header:"X-API-Key" doc:"Bot API key; falls back to the configured key"`
	ScrapeType string `query:"scrape_type" enum:"active,inactive,all" default:"all" doc:"Which participants to refresh"`
}

// TriggerBotOutput wraps the trigger result for Huma.
type TriggerBotOutput struct {
	Body *messageBody
}

func (s *Server) handleTriggerBot(ctx context.Context, input *TriggerBotInput) (*TriggerBotOutput, error) {
	claims, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.services.Bot.Trigger(ctx, input.APIKey, domain.ScrapeType(input.ScrapeType), claims.FirstName)
	if err != nil {
		return nil, err
	}
	return &TriggerBotOutput{Body: &messageBody{Data: res, Message: res.Message.Text}}, nil
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gdgscriet/studyjam-server/internal/domain"
	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
	"github.com/gdgscriet/studyjam-server/internal/id"
	"github.com/gdgscriet/studyjam-server/internal/poll"
	"github.com/gdgscriet/studyjam-server/internal/remote"
	"github.com/gdgscriet/studyjam-server/internal/sse"
)

// Operator messages for bot control.
const (
	MsgMissingAPIKey   = "Please enter Bot API Key"
	MsgBotStarted      = "Bot started successfully"
	MsgTriggerFailed   = "Failed to start bot. Please try again."
	MsgStatusFailed    = "Failed to fetch bot status. Please try again."
	MsgScrapeCompleted = "Scraping completed! Refreshing data..."
	MsgPollTimedOut    = "Stopped waiting for the bot after the polling time limit. Check its status manually."
	MsgPollCancelled   = "Stopped waiting for the bot."
)

// BotOptions configures BotService.
type BotOptions struct {
	// DefaultAPIKey is used when a request carries no key.
	DefaultAPIKey   string
	PollInterval    time.Duration
	MaxPollDuration time.Duration
}

// TriggerResult is the immediate outcome of a trigger.
type TriggerResult struct {
	Run     domain.BotRun          `json:"run"`
	Message domain.OperatorMessage `json:"message"`
}

// BotService starts scraper runs and watches them until they finish.
// At most one poller runs at a time; a new trigger cancels the previous one.
type BotService struct {
	api       BotAPI
	dashboard *DashboardService
	history   HistoryStore
	events    EventEmitter
	opts      BotOptions
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	current    *domain.BotRun
	stopPoller context.CancelFunc
}

// NewBotService creates a bot service. history may be nil.
func NewBotService(api BotAPI, dashboard *DashboardService, history HistoryStore, events EventEmitter, opts BotOptions, logger *slog.Logger) *BotService {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 3 * time.Second
	}
	if opts.MaxPollDuration <= 0 {
		opts.MaxPollDuration = 5 * time.Minute
	}
	if events == nil {
		events = NewNoopEmitter()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BotService{
		api:       api,
		dashboard: dashboard,
		history:   history,
		events:    events,
		opts:      opts,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *BotService) resolveKey(apiKey string) (string, error) {
	if apiKey == "" {
		apiKey = s.opts.DefaultAPIKey
	}
	if apiKey == "" {
		return "", domainerrors.Validation(MsgMissingAPIKey)
	}
	return apiKey, nil
}

// Status asks the remote API for the bot state.
func (s *BotService) Status(ctx context.Context, apiKey string) (domain.BotStatus, error) {
	key, err := s.resolveKey(apiKey)
	if err != nil {
		return domain.BotStatus{}, err
	}
	status, err := s.api.BotStatus(ctx, key)
	if err != nil {
		return domain.BotStatus{}, upstreamError(err, MsgStatusFailed)
	}
	return status, nil
}

// Current returns the latest run this server started, or nil.
func (s *BotService) Current() *domain.BotRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	run := *s.current
	return &run
}

// Trigger starts a scrape and begins polling for its end.
func (s *BotService) Trigger(ctx context.Context, apiKey string, scrapeType domain.ScrapeType, triggeredBy string) (*TriggerResult, error) {
	key, err := s.resolveKey(apiKey)
	if err != nil {
		return nil, err
	}
	if !scrapeType.Valid() {
		return nil, domainerrors.Validationf("invalid scrape type %q", scrapeType)
	}

	run := domain.BotRun{
		ID:          id.MustGenerate(id.PrefixBotRun),
		ScrapeType:  scrapeType,
		StartedAt:   time.Now(),
		TriggeredBy: triggeredBy,
	}

	message, err := s.api.TriggerBot(ctx, key, scrapeType)
	if err != nil {
		text := remote.UserMessage(err, MsgTriggerFailed)
		now := time.Now()
		run.State = domain.PollFailed
		run.Message = text
		run.FinishedAt = &now
		s.saveRun(&run)
		s.logger.Warn("bot trigger failed", "scrape_type", scrapeType, "error", err)
		return nil, upstreamError(err, MsgTriggerFailed)
	}
	if message == "" {
		message = MsgBotStarted
	}

	run.State = domain.PollRunning
	run.Message = message

	pollCtx, stop := context.WithCancel(s.ctx)
	s.mu.Lock()
	if s.stopPoller != nil {
		s.stopPoller()
	}
	s.stopPoller = stop
	s.current = &run
	snapshot := run
	s.mu.Unlock()

	s.saveRun(&snapshot)
	s.logger.Info("bot triggered", "run_id", run.ID, "scrape_type", scrapeType)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer stop()
		s.watch(pollCtx, key, snapshot)
	}()

	return &TriggerResult{Run: snapshot, Message: domain.Success(message)}, nil
}

// watch polls until the bot reports it is idle, then reloads the dashboard.
func (s *BotService) watch(ctx context.Context, key string, run domain.BotRun) {
	checks := 0
	polls, err := poll.Until(ctx, s.opts.PollInterval, s.opts.MaxPollDuration, func(ctx context.Context) (bool, error) {
		checks++
		status, err := s.api.BotStatus(ctx, key)
		if err != nil {
			// A failed check is retried on the next tick.
			s.logger.Warn("bot status check failed", "run_id", run.ID, "error", err)
			return false, nil
		}
		s.events.Emit(sse.NewBotStatusEvent(run.ID, checks, status))
		return !status.IsRunning, nil
	})

	var msg domain.OperatorMessage
	switch {
	case err == nil:
		run.State = domain.PollCompleted
		msg = domain.Success(MsgScrapeCompleted)
	case errors.Is(err, poll.ErrTimeout):
		run.State = domain.PollTimedOut
		msg = domain.Failure(MsgPollTimedOut)
	default:
		run.State = domain.PollCancelled
		msg = domain.Failure(MsgPollCancelled)
	}
	now := time.Now()
	run.Polls = polls
	run.Message = msg.Text
	run.FinishedAt = &now

	s.mu.Lock()
	if s.current != nil && s.current.ID == run.ID {
		s.current = &run
	}
	s.mu.Unlock()

	s.saveRun(&run)
	s.events.Emit(sse.NewBotCompletedEvent(run, msg))
	s.logger.Info("bot polling finished", "run_id", run.ID, "state", run.State, "polls", polls)

	if run.State == domain.PollCompleted && s.dashboard != nil {
		if _, err := s.dashboard.Load(s.ctx); err != nil && !errors.Is(err, ErrLoadSuperseded) {
			s.logger.Error("dashboard reload after scrape failed", "error", err)
		}
	}
}

func (s *BotService) saveRun(run *domain.BotRun) {
	if s.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.SaveBotRun(ctx, run); err != nil {
		s.logger.Warn("failed to save bot run", "run_id", run.ID, "error", err)
	}
}

// Shutdown stops any poller and waits for it to exit.
func (s *BotService) Shutdown() error {
	s.cancel()
	s.wg.Wait()
	return nil
}

// upstreamError maps a remote failure to a domain error carrying the operator text.
func upstreamError(err error, fallback string) error {
	msg := remote.UserMessage(err, fallback)
	var respErr *remote.ResponseError
	if errors.As(err, &respErr) && respErr.IsUnauthorized() {
		return domainerrors.Wrap(err, domainerrors.CodeForbidden, msg)
	}
	return domainerrors.Upstream(msg, err)
}

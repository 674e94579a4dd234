package usecase

import (
	"context"
	"errors"
	"fmt"

	"readtrack/internal/modules/timer/domain"
	"readtrack/internal/modules/timer/dto"
	timerin "readtrack/internal/modules/timer/port/in"
	"readtrack/internal/modules/timer/service"
	"readtrack/internal/platform/clock"
	apperrors "readtrack/internal/platform/errors"

	hclog "github.com/hashicorp/go-hclog"
)

type Interactor struct {
	lifecycle *service.LifecycleService
	clock     clock.Clock
	options   service.RunnerOptions
	logger    hclog.Logger
}

func NewInteractor(lifecycle *service.LifecycleService, clk clock.Clock, options service.RunnerOptions) timerin.Usecase {
	logger := options.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Interactor{lifecycle: lifecycle, clock: clk, options: options, logger: logger}
}

func (i *Interactor) Begin(ctx context.Context, input dto.BeginInput) (dto.BeginOutput, error) {
	began, err := i.lifecycle.Begin(ctx, input.BookID, input.EndTime)
	if err != nil {
		return dto.BeginOutput{}, err
	}
	return dto.BeginOutput{
		SessionID:    began.Session.SessionID,
		BookID:       began.Session.BookID,
		BookTitle:    began.Session.BookTitle,
		EndTime:      input.EndTime,
		HookMessages: began.HookMessages,
	}, nil
}

func (i *Interactor) Finish(ctx context.Context, input dto.FinishInput) (dto.FinishOutput, error) {
	if input.PagesRead < 0 {
		return dto.FinishOutput{}, fmt.Errorf("%w: pages read must be non-negative", apperrors.ErrInvalidInput)
	}
	reason := domain.EndReason(input.Reason)
	if reason == "" {
		reason = domain.EndReasonStopped
	}
	finished, err := i.lifecycle.Finish(ctx, reason, input.PagesRead)
	if err != nil {
		return dto.FinishOutput{}, err
	}
	return finishOutput(finished), nil
}

// Resume reports the open session. One whose planned end has passed is ended
// as expired before returning.
func (i *Interactor) Resume(ctx context.Context) (dto.ResumeOutput, error) {
	active, ok, overdue, err := i.lifecycle.Active(ctx)
	if err != nil {
		return dto.ResumeOutput{}, err
	}
	if !ok {
		return dto.ResumeOutput{}, nil
	}
	out := dto.ResumeOutput{
		Active:    true,
		SessionID: active.SessionID,
		BookID:    active.BookID,
		BookTitle: active.BookTitle,
		EndTime:   active.PlannedEnd,
	}
	if !overdue {
		return out, nil
	}
	if _, err := i.lifecycle.Finish(ctx, domain.EndReasonExpired, 0); err != nil {
		return dto.ResumeOutput{}, err
	}
	out.Active = false
	out.Expired = true
	return out, nil
}

func (i *Interactor) Run(ctx context.Context, input dto.RunInput, onTick func(dto.TickOutput)) (dto.RunOutput, error) {
	hooks := service.NewSessionHooks(i.lifecycle, input.BookID)
	runner := service.NewRunner(i.clock, hooks, i.options)
	defer runner.Close()

	events := runner.Subscribe(8)
	if err := runner.Start(ctx, input.EndTime); err != nil {
		return dto.RunOutput{}, err
	}
	done := runner.Done()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			forwardTick(event, onTick)
		case <-done:
			forwardPending(events, onTick)
			return runOutput(hooks)
		case <-ctx.Done():
			i.logger.Debug("reading window interrupted", "book", input.BookID)
			if err := runner.Stop(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, apperrors.ErrInvalidTransition) {
				return dto.RunOutput{}, err
			}
			<-runner.Done()
			return runOutput(hooks)
		}
	}
}

func forwardPending(events <-chan service.Event, onTick func(dto.TickOutput)) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			forwardTick(event, onTick)
		default:
			return
		}
	}
}

func forwardTick(event service.Event, onTick func(dto.TickOutput)) {
	if onTick != nil && (event.Type == service.EventStarted || event.Type == service.EventTick) {
		onTick(tickOutput(event))
	}
}

func runOutput(hooks *service.SessionHooks) (dto.RunOutput, error) {
	began, finished, ended := hooks.Outcome()
	if !ended {
		return dto.RunOutput{}, fmt.Errorf("reading session %s did not end", began.Session.SessionID)
	}
	return dto.RunOutput{
		SessionID:   finished.Session.SessionID,
		BookTitle:   began.Session.BookTitle,
		Reason:      string(finished.Session.Reason),
		DurationSec: finished.Session.DurationSec,
		NotePath:    finished.Session.Path,
	}, nil
}

func tickOutput(event service.Event) dto.TickOutput {
	return dto.TickOutput{
		Remaining: event.Remaining,
		Display:   domain.ReadingMessage(event.Remaining),
		Clock:     domain.FormatClock(event.Remaining),
		EndTime:   event.EndTime,
	}
}

func finishOutput(finished service.Finished) dto.FinishOutput {
	return dto.FinishOutput{
		SessionID:    finished.Session.SessionID,
		BookID:       finished.Session.BookID,
		Reason:       string(finished.Session.Reason),
		DurationSec:  finished.Session.DurationSec,
		NotePath:     finished.Session.Path,
		PagesAfter:   finished.Session.PagesAfter,
		HookMessages: finished.HookMessages,
	}
}

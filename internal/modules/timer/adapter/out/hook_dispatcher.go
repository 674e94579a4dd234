package out

import (
	"context"

	hookdto "readtrack/internal/modules/hook/dto"
	hookin "readtrack/internal/modules/hook/port/in"
	"readtrack/internal/modules/timer/domain"
	timerout "readtrack/internal/modules/timer/port/out"
)

const (
	eventReadStart = "read_start"
	eventReadEnd   = "read_end"
)

type HookDispatcher struct {
	hooks     hookin.Usecase
	vaultPath string
}

func NewHookDispatcher(hooks hookin.Usecase, vaultPath string) timerout.HookDispatcher {
	return &HookDispatcher{hooks: hooks, vaultPath: vaultPath}
}

func (d *HookDispatcher) ReadStart(ctx context.Context, session timerout.ActiveSession) ([]string, error) {
	out, err := d.hooks.Dispatch(ctx, hookdto.DispatchInput{
		Event:     eventReadStart,
		VaultPath: d.vaultPath,
		SessionID: session.SessionID,
		BookID:    session.BookID,
		BookTitle: session.BookTitle,
		EndTime:   session.PlannedEnd,
	})
	return out.Messages, err
}

func (d *HookDispatcher) ReadEnd(ctx context.Context, session timerout.ActiveSession, reason domain.EndReason) ([]string, error) {
	out, err := d.hooks.Dispatch(ctx, hookdto.DispatchInput{
		Event:     eventReadEnd,
		VaultPath: d.vaultPath,
		SessionID: session.SessionID,
		BookID:    session.BookID,
		BookTitle: session.BookTitle,
		Reason:    string(reason),
	})
	return out.Messages, err
}

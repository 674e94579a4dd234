package usecase

import (
	"context"

	"readtrack/internal/modules/hook/dto"
	hookin "readtrack/internal/modules/hook/port/in"
	"readtrack/internal/modules/hook/service"
)

type Interactor struct {
	svc     *service.HookService
	enabled bool
}

// NewInteractor wraps svc. With enabled=false (hooks_enabled: false) Dispatch
// notifies nobody.
func NewInteractor(svc *service.HookService, enabled bool) hookin.Usecase {
	return &Interactor{svc: svc, enabled: enabled}
}

func (i *Interactor) List(ctx context.Context) ([]dto.HookInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Dispatch(ctx context.Context, input dto.DispatchInput) (dto.DispatchOutput, error) {
	if !i.enabled {
		return dto.DispatchOutput{Event: input.Event}, nil
	}
	return i.svc.Dispatch(ctx, input)
}

package in

import (
	"context"

	"readtrack/internal/modules/hook/dto"
	hookin "readtrack/internal/modules/hook/port/in"
)

type CLIHandler struct {
	usecase   hookin.Usecase
	vaultPath string
}

func NewCLIHandler(usecase hookin.Usecase, vaultPath string) CLIHandler {
	return CLIHandler{usecase: usecase, vaultPath: vaultPath}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.HookInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

// Fire sends a synthetic event to the subscribed hooks.
func (h CLIHandler) Fire(ctx context.Context, event, reason string) (dto.DispatchOutput, error) {
	return h.usecase.Dispatch(ctx, dto.DispatchInput{Event: event, VaultPath: h.vaultPath, Reason: reason})
}

package in

import (
	"context"

	"readtrack/internal/modules/timer/dto"
)

type Usecase interface {
	Begin(ctx context.Context, input dto.BeginInput) (dto.BeginOutput, error)
	Finish(ctx context.Context, input dto.FinishInput) (dto.FinishOutput, error)
	Resume(ctx context.Context) (dto.ResumeOutput, error)
	// Run drives a whole reading window headlessly. It returns when the window
	// expires or ctx is cancelled, which stops the window.
	Run(ctx context.Context, input dto.RunInput, onTick func(dto.TickOutput)) (dto.RunOutput, error)
}

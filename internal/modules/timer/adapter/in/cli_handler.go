package in

import (
	"context"
	"time"

	"readtrack/internal/modules/timer/dto"
	timerin "readtrack/internal/modules/timer/port/in"
)

type CLIHandler struct {
	usecase timerin.Usecase
}

func NewCLIHandler(usecase timerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Begin(ctx context.Context, bookID string, endTime time.Time) (dto.BeginOutput, error) {
	return h.usecase.Begin(ctx, dto.BeginInput{BookID: bookID, EndTime: endTime})
}

func (h CLIHandler) Finish(ctx context.Context, reason string, pagesRead int) (dto.FinishOutput, error) {
	return h.usecase.Finish(ctx, dto.FinishInput{Reason: reason, PagesRead: pagesRead})
}

func (h CLIHandler) Resume(ctx context.Context) (dto.ResumeOutput, error) {
	return h.usecase.Resume(ctx)
}

func (h CLIHandler) Run(ctx context.Context, bookID string, endTime time.Time, onTick func(dto.TickOutput)) (dto.RunOutput, error) {
	return h.usecase.Run(ctx, dto.RunInput{BookID: bookID, EndTime: endTime}, onTick)
}

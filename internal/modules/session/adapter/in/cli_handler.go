package in

import (
	"context"

	sessiondto "readtrack/internal/modules/session/dto"
	sessionin "readtrack/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) End(ctx context.Context, sessionID, reason string, pagesRead int) (sessiondto.EndOutput, error) {
	return h.usecase.End(ctx, sessiondto.EndInput{SessionID: sessionID, Reason: reason, PagesRead: pagesRead})
}

func (h CLIHandler) GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	return h.usecase.GetActive(ctx)
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]sessiondto.SessionOutput, error) {
	return h.usecase.History(ctx, limit)
}

func (h CLIHandler) Reindex(ctx context.Context) error {
	return h.usecase.Reindex(ctx, sessiondto.ReindexInput{})
}

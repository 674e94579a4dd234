package in

import (
	"context"

	"readtrack/internal/modules/hook/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.HookInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	Dispatch(ctx context.Context, input dto.DispatchInput) (dto.DispatchOutput, error)
}

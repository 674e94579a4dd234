package out

import (
	"context"

	"readtrack/internal/modules/session/domain"
)

type SessionStore interface {
	Save(ctx context.Context, session domain.Session) (string, error)
	List(ctx context.Context) ([]domain.Session, error)
}

type ActiveSessionStore interface {
	SaveActive(ctx context.Context, session domain.ActiveSession) error
	LoadActive(ctx context.Context) (domain.ActiveSession, error)
	ClearActive(ctx context.Context) error
}

// SessionIndex is the queryable projection of finished sessions.
type SessionIndex interface {
	Reset(ctx context.Context) error
	UpsertSession(ctx context.Context, session domain.Session) error
	Recent(ctx context.Context, limit int) ([]domain.Session, error)
}

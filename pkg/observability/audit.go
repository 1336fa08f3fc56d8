package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/parley/pkg/domain"
)

// AuditHooks logs stage changes and Answer Service calls as structured records.
func AuditHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageChange: func(ctx context.Context, e *domain.StageEvent) {
			logger.InfoContext(ctx, "stage_change",
				"from", e.From,
				"to", e.To,
				"question", e.Question,
			)
		},
		OnRequestEnd: func(ctx context.Context, e *domain.RequestEvent) {
			level := slog.LevelInfo
			if e.Err != nil {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "answer_service_call",
				"op", e.Op,
				"outcome", e.Outcome,
				"duration", e.Duration,
				"err", e.Err,
			)
		},
	}
}

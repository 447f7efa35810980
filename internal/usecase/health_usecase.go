package usecase

import (
	"context"
)

// HealthUsecase reports process health and optional dependencies
type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	redisCheck func(ctx context.Context) error
}

// NewHealthUsecase takes an optional redis probe; nil means redis is not configured
func NewHealthUsecase(redisCheck func(ctx context.Context) error) HealthUsecase {
	return &healthUsecase{redisCheck: redisCheck}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	status := map[string]string{
		"status": "ok",
		"redis":  "disabled",
	}
	if u.redisCheck == nil {
		return status
	}
	if err := u.redisCheck(ctx); err != nil {
		// Rate limiting falls back to memory, so this is not fatal
		status["redis"] = "unavailable"
		return status
	}
	status["redis"] = "ok"
	return status
}

package db

import (
	"context"

	"Gin_postgres_redis_loan_tool/models"
)

func (r *Repo) ListActions(ctx context.Context, limit int) ([]models.ActionLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []models.ActionLog
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

package db

import (
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	DB *gorm.DB

	// 注入时钟，逾期/延期判定要按整天算，测试时固定
	Now func() time.Time
}

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db, Now: time.Now} }

func (r *Repo) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// models/action_log.go
package models

import "time"

const ActionLogTable = "action_log"

const (
	ActionLoan   = "loan"
	ActionReturn = "return"
	ActionExtend = "extend"
	ActionSync   = "sync"
	ActionImport = "import"
)

// ActionLog 操作流水：借出/归还/延期/同步/导入
type ActionLog struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Action    string    `gorm:"size:40;not null;index" json:"action"`
	Detail    string    `gorm:"type:text" json:"detail"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (ActionLog) TableName() string { return ActionLogTable }

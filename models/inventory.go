// models/inventory.go
package models

import "time"

const InventoryTable = "inventory"

// 库存状态：yes = 借出中 / no = 在库
// Status 是 loans 表的冗余投影，只允许引擎（和 sync）写它
const (
	StatusOnLoan    = "yes"
	StatusAvailable = "no"
)

type InventoryItem struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	GreenNumber string    `gorm:"size:120;uniqueIndex;not null" json:"greenNumber"` // 唯一编号（绿牌号）
	Name        string    `gorm:"size:200;not null" json:"name"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	Price       float64   `json:"price"`
	Category    string    `gorm:"size:120" json:"category"`
	Status      string    `gorm:"size:10;not null;default:'no'" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (InventoryItem) TableName() string { return InventoryTable }

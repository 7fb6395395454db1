// models/cart_template.go
package models

import "time"

const CartTemplateTable = "cart_templates"
const CartTemplateItemTable = "cart_template_items"

// CartTemplate 购物车模板：一组常一起借出的绿牌号，方便重复借出
// 同一个绿牌号同一时间只允许出现在一个模板里（保存前显式查重，见 repo_cart）
type CartTemplate struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:200;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Items []CartTemplateItem `gorm:"foreignKey:TemplateID" json:"items,omitempty"`
}

type CartTemplateItem struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	TemplateID  string `gorm:"type:uuid;index;not null" json:"templateId"`
	GreenNumber string `gorm:"size:120;not null;index" json:"greenNumber"`
}

func (CartTemplate) TableName() string     { return CartTemplateTable }
func (CartTemplateItem) TableName() string { return CartTemplateItemTable }

// db/repo_inventory.go
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"Gin_postgres_redis_loan_tool/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemInput struct {
	GreenNumber string  `json:"greenNumber"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

func (r *Repo) CreateItem(ctx context.Context, in ItemInput) (*models.InventoryItem, error) {
	green := strings.TrimSpace(in.GreenNumber)
	if green == "" {
		return nil, validationf("green number is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("item name is required")
	}
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("green_number = ?", green).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, conflictf("item with green number %s already exists", green)
	}
	qty := in.Quantity
	if qty <= 0 {
		qty = 1
	}
	it := models.InventoryItem{
		ID:          uuid.NewString(),
		GreenNumber: green,
		Name:        in.Name,
		Quantity:    qty,
		Price:       in.Price,
		Category:    in.Category,
		Status:      models.StatusAvailable,
	}
	if err := r.DB.WithContext(ctx).Create(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repo) FindItemByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	var it models.InventoryItem
	if err := r.DB.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "item", Key: id}
		}
		return nil, err
	}
	return &it, nil
}

func (r *Repo) FindItemByGreenNumber(ctx context.Context, green string) (*models.InventoryItem, error) {
	var it models.InventoryItem
	if err := r.DB.WithContext(ctx).First(&it, "green_number = ?", green).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "item", Key: green}
		}
		return nil, err
	}
	return &it, nil
}

// UpdateItem 只改资料字段，status 归引擎管
func (r *Repo) UpdateItem(ctx context.Context, id string, in ItemInput) (*models.InventoryItem, error) {
	it, err := r.FindItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if s := strings.TrimSpace(in.Name); s != "" {
		updates["name"] = s
	}
	if in.Quantity > 0 {
		updates["quantity"] = in.Quantity
	}
	if in.Price > 0 {
		updates["price"] = in.Price
	}
	if s := strings.TrimSpace(in.Category); s != "" {
		updates["category"] = s
	}
	if len(updates) == 0 {
		return it, nil
	}
	if err := r.DB.WithContext(ctx).Model(it).Updates(updates).Error; err != nil {
		return nil, err
	}
	return it, nil
}

// DeleteItem 还有未归还借出单的物品不允许删
func (r *Repo) DeleteItem(ctx context.Context, id string) error {
	it, err := r.FindItemByID(ctx, id)
	if err != nil {
		return err
	}
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("green_number = ? AND status = ?", it.GreenNumber, models.LoanActive).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return conflictf("item %s is currently on loan and cannot be deleted", it.GreenNumber)
	}
	return r.DB.WithContext(ctx).Delete(&models.InventoryItem{}, "id = ?", id).Error
}

// ItemRow 库存行 + 当前借用人（借龄读取时现算）
type ItemRow struct {
	ID          string    `json:"id"`
	GreenNumber string    `json:"greenNumber"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	LoanID          *string    `json:"loanId,omitempty"`
	CurrentBorrower *string    `json:"currentBorrower,omitempty"`
	LoanDate        *time.Time `json:"loanDate,omitempty"`
	DaysActive      int        `json:"daysActive"`
	Overdue         bool       `json:"overdue"`
}

type ItemsQuery struct {
	Q      string // 模糊搜索：green_number/name/category
	Status string // "", "on_loan", "available", "overdue"
	Page   int
	Size   int
}

type PagedItems struct {
	Total int64     `json:"total"`
	Items []ItemRow `json:"items"`
}

// ListItemsWithCurrentLoan 管理视图：每件物品带上当前未归还的借出单。
// 唯一部分索引保证每个绿牌号至多一条 active，LEFT JOIN 不会炸行。
func (r *Repo) ListItemsWithCurrentLoan(ctx context.Context, q ItemsQuery) (*PagedItems, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}
	offset := (q.Page - 1) * q.Size

	db := r.DB.WithContext(ctx)

	base := db.
		Table(models.InventoryTable+" i").
		Joins(fmt.Sprintf(
			"LEFT JOIN %s ol ON ol.green_number = i.green_number AND ol.status = 'active'",
			models.LoanTable))
	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		base = base.Where(
			"LOWER(i.green_number) LIKE ? OR LOWER(i.name) LIKE ? OR LOWER(i.category) LIKE ?",
			pat, pat, pat)
	}
	switch q.Status {
	case "on_loan", "overdue":
		base = base.Where("i.status = ?", models.StatusOnLoan)
	case "available":
		base = base.Where("i.status = ?", models.StatusAvailable)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Distinct("i.id").Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []ItemRow
	if err := base.Session(&gorm.Session{}).
		Select(`i.id, i.green_number, i.name, i.quantity, i.price, i.category, i.status,
			i.created_at, i.updated_at,
			ol.id AS loan_id, ol.borrower_name AS current_borrower, ol.loan_date`).
		Order("i.created_at DESC").
		Offset(offset).Limit(q.Size).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	now := r.now()
	out := rows[:0]
	for _, row := range rows {
		if row.LoanDate != nil {
			l := models.Loan{LoanDate: *row.LoanDate, Status: models.LoanActive}
			row.DaysActive = l.DaysActive(now)
			row.Overdue = l.IsOverdue(now)
		}
		if q.Status == "overdue" && !row.Overdue {
			continue
		}
		out = append(out, row)
	}
	return &PagedItems{Total: total, Items: out}, nil
}

// UpsertItemByGreenNumber 批量导入用的原语：有则更新资料，无则新建。
// 不碰 status，也不碰借出单 —— 导入永远不改借还状态。
func (r *Repo) UpsertItemByGreenNumber(ctx context.Context, in ItemInput) (created bool, err error) {
	green := strings.TrimSpace(in.GreenNumber)
	if green == "" {
		return false, validationf("green number is required")
	}
	var it models.InventoryItem
	err = r.DB.WithContext(ctx).First(&it, "green_number = ?", green).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		qty := in.Quantity
		if qty <= 0 {
			qty = 1
		}
		it = models.InventoryItem{
			ID:          uuid.NewString(),
			GreenNumber: green,
			Name:        in.Name,
			Quantity:    qty,
			Price:       in.Price,
			Category:    in.Category,
			Status:      models.StatusAvailable,
		}
		if err := r.DB.WithContext(ctx).Create(&it).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, r.DB.WithContext(ctx).Model(&it).Updates(map[string]any{
		"name":     in.Name,
		"quantity": in.Quantity,
		"price":    in.Price,
		"category": in.Category,
	}).Error
}

type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// ImportItems 逐行 upsert。行与行之间互不影响，坏行直接让整个导入失败，
// 让用户修完再重新传（导入不在借还一致性保障范围内）。
func (r *Repo) ImportItems(ctx context.Context, rows []ItemInput) (*ImportResult, error) {
	res := &ImportResult{}
	for i, row := range rows {
		created, err := r.UpsertItemByGreenNumber(ctx, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}
	_ = r.logAction(r.DB.WithContext(ctx), models.ActionImport,
		fmt.Sprintf("import: %d created, %d updated", res.Created, res.Updated))
	return res, nil
}

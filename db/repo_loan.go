// db/repo_loan.go
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

type EquipmentInput struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

type CreateLoansInput struct {
	BorrowerName string
	Signature    string
	GreenNumbers []string // 按提交顺序处理
	Equipment    []EquipmentInput
	LoanDate     time.Time // 零值 = 今天
}

// CreateLoans 批量借出：一次签字可以借走一整车物品。
// 整批一个事务：任何一件校验不过（不存在/已借出），前面已写入的行全部回滚。
func (r *Repo) CreateLoans(ctx context.Context, in CreateLoansInput) ([]models.Loan, error) {
	if strings.TrimSpace(in.Signature) == "" {
		return nil, validationf("signature is required")
	}
	var greens []string
	for _, g := range in.GreenNumbers {
		if g = strings.TrimSpace(g); g != "" {
			greens = append(greens, g)
		}
	}
	if len(greens) == 0 {
		return nil, validationf("no items selected")
	}

	loanDate := in.LoanDate
	if loanDate.IsZero() {
		loanDate = r.now()
	}
	loanDate = loanDate.UTC()

	var created []models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, green := range greens {
			// 1) 绿牌号必须存在
			var it models.InventoryItem
			if err := tx.First(&it, "green_number = ?", green).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Kind: "item", Key: green}
				}
				return err
			}
			// 2) 不能已经借出（唯一部分索引兜底并发窗口）
			var cur models.Loan
			err := tx.Where("green_number = ? AND status = ?", green, models.LoanActive).
				First(&cur).Error
			if err == nil {
				return conflictf("item %s is already on loan to %s", green, cur.BorrowerName)
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			// 3) 建借出单
			l := models.Loan{
				ID:           uuid.NewString(),
				BorrowerName: in.BorrowerName,
				ItemName:     it.Name,
				GreenNumber:  green,
				LoanDate:     loanDate,
				Signature:    in.Signature,
				Status:       models.LoanActive,
			}
			if err := tx.Create(&l).Error; err != nil {
				return err
			}
			// 4) 占用库存
			if err := tx.Model(&models.InventoryItem{}).
				Where("id = ?", it.ID).
				Update("status", models.StatusOnLoan).Error; err != nil {
				return err
			}
			// 5) 每张借出单都带全套配件
			for _, eq := range in.Equipment {
				if strings.TrimSpace(eq.Type) == "" {
					continue
				}
				qty := eq.Quantity
				if qty <= 0 {
					qty = 1
				}
				e := models.LoanEquipment{
					ID:            uuid.NewString(),
					LoanID:        l.ID,
					EquipmentType: eq.Type,
					Quantity:      qty,
				}
				if err := tx.Create(&e).Error; err != nil {
					return err
				}
				l.Equipment = append(l.Equipment, e)
			}
			created = append(created, l)
		}
		return r.logAction(tx, models.ActionLoan,
			fmt.Sprintf("%s borrowed %d item(s): %s", in.BorrowerName, len(created), strings.Join(greens, ", ")))
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ReturnLoans 归还（单个或批量），整批一个事务。
// 库存状态不是无脑翻成 no，而是看同一绿牌号是否还剩别的 active 借出单。
func (r *Repo) ReturnLoans(ctx context.Context, loanIDs []string) ([]models.Loan, error) {
	if len(loanIDs) == 0 {
		return nil, validationf("no loans selected")
	}

	today := truncateToDay(r.now())
	var returned []models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range loanIDs {
			var l models.Loan
			if err := tx.First(&l, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Kind: "loan", Key: id}
				}
				return err
			}
			// 幂等：已归还的跳过
			if l.Status == models.LoanReturned {
				returned = append(returned, l)
				continue
			}
			l.Status = models.LoanReturned
			l.ReturnDate = &today
			if err := tx.Save(&l).Error; err != nil {
				return err
			}
			// 只有同绿牌号再无 active 借出单时才释放库存
			var n int64
			if err := tx.Model(&models.Loan{}).
				Where("green_number = ? AND status = ?", l.GreenNumber, models.LoanActive).
				Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				if err := tx.Model(&models.InventoryItem{}).
					Where("green_number = ?", l.GreenNumber).
					Update("status", models.StatusAvailable).Error; err != nil {
					return err
				}
			}
			returned = append(returned, l)
			if err := r.logAction(tx, models.ActionReturn,
				fmt.Sprintf("%s returned item %s", l.BorrowerName, l.GreenNumber)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return returned, nil
}

// ExtendLoan 延期：只有已逾期（超过 7 个整天）的借出单才能延，
// 延期是把 loan_date 往后挪 7 天，不是重置成今天，累计借龄不丢。
func (r *Repo) ExtendLoan(ctx context.Context, loanID string) (*models.Loan, error) {
	var l models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&l, "id = ?", loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Kind: "loan", Key: loanID}
			}
			return err
		}
		if l.Status != models.LoanActive {
			return validationf("loan for item %s is already returned", l.GreenNumber)
		}
		if days := l.DaysActive(r.now()); days <= models.OverdueDays {
			return validationf("loan for item %s is not overdue yet (%d of %d days)",
				l.GreenNumber, days, models.OverdueDays)
		}
		l.LoanDate = l.LoanDate.AddDate(0, 0, models.OverdueDays)
		if err := tx.Save(&l).Error; err != nil {
			return err
		}
		return r.logAction(tx, models.ActionExtend,
			fmt.Sprintf("loan for item %s extended by %d days", l.GreenNumber, models.OverdueDays))
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// SyncStatuses 对账修复：库存状态全部重算一遍。先清零再按 active 借出单置位，
// 跑几遍结果都一样。启动时跑一次，页面上也可手动触发。
func (r *Repo) SyncStatuses(ctx context.Context) (int64, error) {
	var onLoan int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(fmt.Sprintf(
			`UPDATE %s SET status = 'no'`, models.InventoryTable,
		)).Error; err != nil {
			return err
		}
		res := tx.Exec(fmt.Sprintf(
			`UPDATE %s SET status = 'yes'
			 WHERE green_number IN (SELECT green_number FROM %s WHERE status = 'active')`,
			models.InventoryTable, models.LoanTable,
		))
		if res.Error != nil {
			return res.Error
		}
		onLoan = res.RowsAffected
		return r.logAction(tx, models.ActionSync,
			fmt.Sprintf("statuses recomputed, %d item(s) on loan", onLoan))
	})
	return onLoan, err
}

// LoanRow 列表行：借出单 + 读取时计算的借龄/逾期（不落库）
type LoanRow struct {
	models.Loan
	DaysActive int  `json:"daysActive"`
	IsOverdue  bool `json:"isOverdue"`
}

type LoansQuery struct {
	Status   string // "", "active", "returned", "overdue"
	Borrower string
}

func (r *Repo) ListLoans(ctx context.Context, q LoansQuery) ([]LoanRow, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Preload("Equipment").
		Order("loan_date DESC, created_at DESC")
	switch q.Status {
	case "active", "overdue":
		tx = tx.Where("status = ?", models.LoanActive)
	case "returned":
		tx = tx.Where("status = ?", models.LoanReturned)
	}
	if b := strings.TrimSpace(q.Borrower); b != "" {
		tx = tx.Where("LOWER(borrower_name) LIKE ?", "%"+strings.ToLower(b)+"%")
	}
	var ls []models.Loan
	if err := tx.Find(&ls).Error; err != nil {
		return nil, err
	}

	now := r.now()
	rows := make([]LoanRow, 0, len(ls))
	for _, l := range ls {
		row := LoanRow{Loan: l, DaysActive: l.DaysActive(now), IsOverdue: l.IsOverdue(now)}
		if q.Status == "overdue" && !row.IsOverdue {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *Repo) logAction(tx *gorm.DB, action, detail string) error {
	return tx.Create(&models.ActionLog{
		ID:     uuid.NewString(),
		Action: action,
		Detail: detail,
	}).Error
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// db/repo_cart.go
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"Gin_postgres_redis_loan_tool/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartTemplateInput struct {
	Name         string   `json:"name"`
	GreenNumbers []string `json:"greenNumbers"`
}

func (r *Repo) CreateCartTemplate(ctx context.Context, in CartTemplateInput) (*models.CartTemplate, error) {
	name, greens, err := normalizeTemplateInput(in)
	if err != nil {
		return nil, err
	}
	var tpl *models.CartTemplate
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkTemplateGreens(tx, greens, ""); err != nil {
			return err
		}
		t := models.CartTemplate{ID: uuid.NewString(), Name: name}
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
		items, err := insertTemplateItems(tx, t.ID, greens)
		if err != nil {
			return err
		}
		t.Items = items
		tpl = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

// UpdateCartTemplate 整体替换模板内容，查重时排除自己
func (r *Repo) UpdateCartTemplate(ctx context.Context, id string, in CartTemplateInput) (*models.CartTemplate, error) {
	name, greens, err := normalizeTemplateInput(in)
	if err != nil {
		return nil, err
	}
	var tpl *models.CartTemplate
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.CartTemplate
		if err := tx.First(&t, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Kind: "template", Key: id}
			}
			return err
		}
		if err := checkTemplateGreens(tx, greens, t.ID); err != nil {
			return err
		}
		t.Name = name
		if err := tx.Save(&t).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", t.ID).
			Delete(&models.CartTemplateItem{}).Error; err != nil {
			return err
		}
		items, err := insertTemplateItems(tx, t.ID, greens)
		if err != nil {
			return err
		}
		t.Items = items
		tpl = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

func (r *Repo) DeleteCartTemplate(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.CartTemplate{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &NotFoundError{Kind: "template", Key: id}
		}
		return tx.Where("template_id = ?", id).
			Delete(&models.CartTemplateItem{}).Error
	})
}

func (r *Repo) ListCartTemplates(ctx context.Context) ([]models.CartTemplate, error) {
	var ts []models.CartTemplate
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Find(&ts).Error
	return ts, err
}

func normalizeTemplateInput(in CartTemplateInput) (string, []string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", nil, validationf("template name is required")
	}
	seen := map[string]bool{}
	var greens []string
	for _, g := range in.GreenNumbers {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if seen[g] {
			return "", nil, validationf("green number %s listed twice in template", g)
		}
		seen[g] = true
		greens = append(greens, g)
	}
	if len(greens) == 0 {
		return "", nil, validationf("template needs at least one item")
	}
	return name, greens, nil
}

// 一个绿牌号同一时间只允许挂在一个模板下。查到冲突时报出对方模板名，
// 整个保存失败，什么都不写。
func checkTemplateGreens(tx *gorm.DB, greens []string, excludeID string) error {
	for _, g := range greens {
		q := tx.Table(models.CartTemplateItemTable+" ci").
			Select("t.name").
			Joins(fmt.Sprintf("JOIN %s t ON t.id = ci.template_id", models.CartTemplateTable)).
			Where("ci.green_number = ?", g)
		if excludeID != "" {
			q = q.Where("ci.template_id <> ?", excludeID)
		}
		var owner string
		err := q.Limit(1).Scan(&owner).Error
		if err != nil {
			return err
		}
		if owner != "" {
			return conflictf("item %s already belongs to template %q", g, owner)
		}
	}
	return nil
}

func insertTemplateItems(tx *gorm.DB, templateID string, greens []string) ([]models.CartTemplateItem, error) {
	items := make([]models.CartTemplateItem, 0, len(greens))
	for _, g := range greens {
		it := models.CartTemplateItem{
			ID:          uuid.NewString(),
			TemplateID:  templateID,
			GreenNumber: g,
		}
		if err := tx.Create(&it).Error; err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

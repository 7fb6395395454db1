package db

import (
	"context"
	"testing"

	"Gin_postgres_redis_loan_tool/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartTemplateCrossTemplateUniqueness(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.CreateCartTemplate(ctx, CartTemplateInput{
		Name:         "Projector cart",
		GreenNumbers: []string{"1001", "1002"},
	})
	require.NoError(t, err)

	// 1002 已经挂在别的模板下：整个保存失败，报出对方模板名
	_, err = r.CreateCartTemplate(ctx, CartTemplateInput{
		Name:         "AV bundle",
		GreenNumbers: []string{"1003", "1002"},
	})
	var cf *ConflictError
	require.ErrorAs(t, err, &cf)
	assert.Contains(t, cf.Error(), "1002")
	assert.Contains(t, cf.Error(), "Projector cart")

	// 没有半成品写入
	var n int64
	require.NoError(t, r.DB.Model(&models.CartTemplate{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
	require.NoError(t, r.DB.Model(&models.CartTemplateItem{}).
		Where("green_number = ?", "1003").Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestCartTemplateUpdateExcludesItself(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	tpl, err := r.CreateCartTemplate(ctx, CartTemplateInput{
		Name:         "Projector cart",
		GreenNumbers: []string{"1001", "1002"},
	})
	require.NoError(t, err)

	// 保留自己名下的 1002 不算冲突
	updated, err := r.UpdateCartTemplate(ctx, tpl.ID, CartTemplateInput{
		Name:         "Projector cart v2",
		GreenNumbers: []string{"1002", "1004"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Projector cart v2", updated.Name)
	require.Len(t, updated.Items, 2)

	// 但挂到别的模板下的还是冲突
	_, err = r.CreateCartTemplate(ctx, CartTemplateInput{
		Name:         "Other",
		GreenNumbers: []string{"1004"},
	})
	var cf *ConflictError
	require.ErrorAs(t, err, &cf)
}

func TestCartTemplateValidation(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	var ve *ValidationError

	_, err := r.CreateCartTemplate(ctx, CartTemplateInput{Name: "  "})
	require.ErrorAs(t, err, &ve)

	_, err = r.CreateCartTemplate(ctx, CartTemplateInput{
		Name: "Empty", GreenNumbers: []string{" ", ""},
	})
	require.ErrorAs(t, err, &ve)

	_, err = r.CreateCartTemplate(ctx, CartTemplateInput{
		Name: "Dup", GreenNumbers: []string{"1", "1"},
	})
	require.ErrorAs(t, err, &ve)
}

func TestCartTemplateDelete(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	tpl, err := r.CreateCartTemplate(ctx, CartTemplateInput{
		Name: "Cart", GreenNumbers: []string{"1001"},
	})
	require.NoError(t, err)

	require.NoError(t, r.DeleteCartTemplate(ctx, tpl.ID))

	var nf *NotFoundError
	err = r.DeleteCartTemplate(ctx, tpl.ID)
	require.ErrorAs(t, err, &nf)

	// 绿牌号释放了，可以进新模板
	_, err = r.CreateCartTemplate(ctx, CartTemplateInput{
		Name: "Cart 2", GreenNumbers: []string{"1001"},
	})
	require.NoError(t, err)
}

func TestCartTemplateUpdateUnknown(t *testing.T) {
	r := newTestRepo(t)
	var nf *NotFoundError
	_, err := r.UpdateCartTemplate(context.Background(), "nope", CartTemplateInput{
		Name: "X", GreenNumbers: []string{"1"},
	})
	require.ErrorAs(t, err, &nf)
}

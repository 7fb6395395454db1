package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"Gin_postgres_redis_loan_tool/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLoanMarksItemOnLoan(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedItem(t, r, "1001", "Projector")

	loans, err := r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Alice",
		Signature:    "A.",
		GreenNumbers: []string{"1001"},
	})
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, models.LoanActive, loans[0].Status)
	assert.Equal(t, "Projector", loans[0].ItemName)
	assert.Equal(t, "1001", loans[0].GreenNumber)
	assert.Equal(t, models.StatusOnLoan, itemStatus(t, r, "1001"))
}

func TestCreateLoanConflictNamesCurrentBorrower(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedItem(t, r, "1001", "Projector")

	_, err := r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Alice", Signature: "A.", GreenNumbers: []string{"1001"},
	})
	require.NoError(t, err)

	_, err = r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Bob", Signature: "B.", GreenNumbers: []string{"1001"},
	})
	var cf *ConflictError
	require.ErrorAs(t, err, &cf)
	assert.Contains(t, cf.Error(), "1001")
	assert.Contains(t, cf.Error(), "Alice")

	// Bob 不该留下任何借出单
	assert.EqualValues(t, 0, loanCount(t, r, "borrower_name = ?", "Bob"))
}

func TestCreateLoanValidation(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedItem(t, r, "1001", "Projector")

	var ve *ValidationError

	_, err := r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Alice", Signature: "   ", GreenNumbers: []string{"1001"},
	})
	require.ErrorAs(t, err, &ve)

	_, err = r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Alice", Signature: "A.", GreenNumbers: []string{"", "  "},
	})
	require.ErrorAs(t, err, &ve)

	// 校验失败不碰存储
	assert.EqualValues(t, 0, loanCount(t, r, "1 = 1"))
	assert.Equal(t, models.StatusAvailable, itemStatus(t, r, "1001"))
}

func TestCreateLoanUnknownItem(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.CreateLoans(context.Background(), CreateLoansInput{
		BorrowerName: "Alice", Signature: "A.", GreenNumbers: []string{"9999"},
	})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Contains(t, nf.Error(), "9999")
}

func TestBatchLoanIsAtomic(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedItem(t, r, "A", "Cart")
	seedItem(t, r, "B", "Cable")

	_, err := r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Alice", Signature: "A.", GreenNumbers: []string{"B"},
	})
	require.NoError(t, err)

	// A 可借、B 已借出：整批失败，A 不能被借走也不能被标记
	_, err = r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Bob", Signature: "B.", GreenNumbers: []string{"A", "B"},
	})
	var cf *ConflictError
	require.ErrorAs(t, err, &cf)

	assert.EqualValues(t, 0, loanCount(t, r, "green_number = ?", "A"))
	assert.Equal(t, models.StatusAvailable, itemStatus(t, r, "A"))
	assert.Equal(t, models.StatusOnLoan, itemStatus(t, r, "B"))
}

func TestCreateLoansCopiesEquipmentToEveryLoan(t *testing.T) {
	r := newTestRepo(t)
	seedItem(t, r, "1", "Projector")
	seedItem(t, r, "2", "Screen")

	loans, err := r.CreateLoans(context.Background(), CreateLoansInput{
		BorrowerName: "Alice",
		Signature:    "A.",
		GreenNumbers: []string{"1", "2"},
		Equipment: []EquipmentInput{
			{Type: "HDMI cable", Quantity: 2},
			{Type: "Remote", Quantity: 0}, // 数量兜底成 1
			{Type: "   "},                 // 空类型跳过
		},
	})
	require.NoError(t, err)
	require.Len(t, loans, 2)
	for _, l := range loans {
		require.Len(t, l.Equipment, 2)
		assert.Equal(t, "HDMI cable", l.Equipment[0].EquipmentType)
		assert.Equal(t, 2, l.Equipment[0].Quantity)
		assert.Equal(t, 1, l.Equipment[1].Quantity)
	}
}

func TestReturnLoanReleasesItem(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedItem(t, r, "1001", "Projector")

	loans, err := r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Alice", Signature: "A.", GreenNumbers: []string{"1001"},
	})
	require.NoError(t, err)

	returned, err := r.ReturnLoans(ctx, []string{loans[0].ID})
	require.NoError(t, err)
	require.Len(t, returned, 1)
	assert.Equal(t, models.LoanReturned, returned[0].Status)
	require.NotNil(t, returned[0].ReturnDate)
	assert.WithinDuration(t, truncateToDay(testNow), *returned[0].ReturnDate, time.Second)
	assert.Equal(t, models.StatusAvailable, itemStatus(t, r, "1001"))
}

// 同一绿牌号存在第二条 active 借出单（历史数据/人工改库造成）时，
// 归还一条不能把库存放掉。唯一索引在正常路径会挡住这种状态，这里先拆掉。
func TestReturnKeepsItemWhileAnotherActiveLoanRemains(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedItem(t, r, "1001", "Projector")

	loans, err := r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Alice", Signature: "A.", GreenNumbers: []string{"1001"},
	})
	require.NoError(t, err)

	require.NoError(t, r.DB.Exec(fmt.Sprintf(
		"DROP INDEX %s_one_active_per_green_number", models.LoanTable)).Error)
	ghost := models.Loan{
		ID: uuid.NewString(), BorrowerName: "Ghost", ItemName: "Projector",
		GreenNumber: "1001", LoanDate: testNow.AddDate(0, 0, -1),
		Signature: "G.", Status: models.LoanActive,
	}
	require.NoError(t, r.DB.Create(&ghost).Error)

	_, err = r.ReturnLoans(ctx, []string{loans[0].ID})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnLoan, itemStatus(t, r, "1001"))

	// 最后一条也还掉，库存才释放
	_, err = r.ReturnLoans(ctx, []string{ghost.ID})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, itemStatus(t, r, "1001"))
}

func TestReturnIsIdempotentPerLoan(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedItem(t, r, "1001", "Projector")

	loans, err := r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Alice", Signature: "A.", GreenNumbers: []string{"1001"},
	})
	require.NoError(t, err)

	first, err := r.ReturnLoans(ctx, []string{loans[0].ID})
	require.NoError(t, err)
	second, err := r.ReturnLoans(ctx, []string{loans[0].ID})
	require.NoError(t, err)
	assert.WithinDuration(t, *first[0].ReturnDate, *second[0].ReturnDate, time.Second)
}

func TestBulkReturnRollsBackOnUnknownLoan(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedItem(t, r, "1001", "Projector")

	loans, err := r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Alice", Signature: "A.", GreenNumbers: []string{"1001"},
	})
	require.NoError(t, err)

	_, err = r.ReturnLoans(ctx, []string{loans[0].ID, "no-such-loan"})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	// 整批回滚：前面那条也还原成 active
	assert.EqualValues(t, 1, loanCount(t, r, "status = ?", models.LoanActive))
	assert.Equal(t, models.StatusOnLoan, itemStatus(t, r, "1001"))
}

func TestExtendRejectedWhileNotOverdue(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedItem(t, r, "1001", "Projector")

	loanDate := testNow.AddDate(0, 0, -models.OverdueDays) // 整 7 天，还不算逾期
	loans, err := r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Alice", Signature: "A.",
		GreenNumbers: []string{"1001"}, LoanDate: loanDate,
	})
	require.NoError(t, err)

	_, err = r.ExtendLoan(ctx, loans[0].ID)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), "not overdue")

	var l models.Loan
	require.NoError(t, r.DB.First(&l, "id = ?", loans[0].ID).Error)
	assert.WithinDuration(t, loanDate, l.LoanDate, time.Second)
}

func TestExtendAdvancesLoanDateBySevenDays(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedItem(t, r, "1001", "Projector")

	loanDate := testNow.AddDate(0, 0, -10)
	loans, err := r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Alice", Signature: "A.",
		GreenNumbers: []string{"1001"}, LoanDate: loanDate,
	})
	require.NoError(t, err)

	l, err := r.ExtendLoan(ctx, loans[0].ID)
	require.NoError(t, err)
	// 是在原借出日上加 7 天，不是重置成今天
	assert.WithinDuration(t, loanDate.AddDate(0, 0, 7), l.LoanDate, time.Second)
	assert.Equal(t, 3, l.DaysActive(testNow))
	assert.False(t, l.IsOverdue(testNow))
}

func TestExtendReturnedLoanRejected(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedItem(t, r, "1001", "Projector")

	loans, err := r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Alice", Signature: "A.",
		GreenNumbers: []string{"1001"}, LoanDate: testNow.AddDate(0, 0, -10),
	})
	require.NoError(t, err)
	_, err = r.ReturnLoans(ctx, []string{loans[0].ID})
	require.NoError(t, err)

	_, err = r.ExtendLoan(ctx, loans[0].ID)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestOverdueIsDerivedAtReadTime(t *testing.T) {
	now := testNow
	l := models.Loan{Status: models.LoanActive, LoanDate: now.AddDate(0, 0, -7)}
	assert.Equal(t, 7, l.DaysActive(now))
	assert.False(t, l.IsOverdue(now), "整 7 天还不算逾期")

	l.LoanDate = now.AddDate(0, 0, -8)
	assert.True(t, l.IsOverdue(now))

	l.Status = models.LoanReturned
	assert.False(t, l.IsOverdue(now), "已归还的不算逾期")
}

func TestListLoansDerivedFields(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedItem(t, r, "1", "Projector")
	seedItem(t, r, "2", "Screen")

	_, err := r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Alice", Signature: "A.",
		GreenNumbers: []string{"1"}, LoanDate: testNow.AddDate(0, 0, -10),
	})
	require.NoError(t, err)
	_, err = r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Bob", Signature: "B.",
		GreenNumbers: []string{"2"}, LoanDate: testNow.AddDate(0, 0, -2),
	})
	require.NoError(t, err)

	rows, err := r.ListLoans(ctx, LoansQuery{Status: "overdue"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alice", rows[0].BorrowerName)
	assert.Equal(t, 10, rows[0].DaysActive)
	assert.True(t, rows[0].IsOverdue)

	rows, err = r.ListLoans(ctx, LoansQuery{Status: "active", Borrower: "bob"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsOverdue)
}

func TestSyncStatusesRepairsDriftAndIsIdempotent(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedItem(t, r, "1", "Projector")
	seedItem(t, r, "2", "Screen")
	seedItem(t, r, "3", "Cable")

	_, err := r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Alice", Signature: "A.", GreenNumbers: []string{"1", "2"},
	})
	require.NoError(t, err)

	// 人为制造漂移：全部标成借出
	require.NoError(t, r.DB.Exec(
		fmt.Sprintf("UPDATE %s SET status = 'yes'", models.InventoryTable)).Error)

	onLoan, err := r.SyncStatuses(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, onLoan)
	assert.Equal(t, models.StatusOnLoan, itemStatus(t, r, "1"))
	assert.Equal(t, models.StatusOnLoan, itemStatus(t, r, "2"))
	assert.Equal(t, models.StatusAvailable, itemStatus(t, r, "3"))

	snapshot := func() map[string]string {
		var items []models.InventoryItem
		require.NoError(t, r.DB.Find(&items).Error)
		m := map[string]string{}
		for _, it := range items {
			m[it.GreenNumber] = it.Status
		}
		return m
	}
	s1 := snapshot()
	_, err = r.SyncStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, s1, snapshot())
}

func TestActionLogWritten(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedItem(t, r, "1001", "Projector")

	loans, err := r.CreateLoans(ctx, CreateLoansInput{
		BorrowerName: "Alice", Signature: "A.", GreenNumbers: []string{"1001"},
	})
	require.NoError(t, err)
	_, err = r.ReturnLoans(ctx, []string{loans[0].ID})
	require.NoError(t, err)

	logs, err := r.ListActions(ctx, 10)
	require.NoError(t, err)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Contains(t, actions, models.ActionLoan)
	assert.Contains(t, actions, models.ActionReturn)
}

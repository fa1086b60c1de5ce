package service

import (
	"encoding/json"
	"testing"
	"time"

	"moneybook/errs"
	"moneybook/models"
	"moneybook/validation"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func transactionColumns() []string {
	return []string{"id", "user_id", "amount", "description", "date", "category_id",
		"notes", "receipt_url", "created_at", "updated_at", "deleted_at"}
}

func categoryColumns() []string {
	return []string{"id", "user_id", "name", "type", "color", "icon", "is_default",
		"created_at", "updated_at", "deleted_at"}
}

func expenseCategoryRow(id, userID uint) *sqlmock.Rows {
	return sqlmock.NewRows(categoryColumns()).
		AddRow(id, userID, "餐饮", "expense", "#ef4444", "🍜", true, time.Now(), time.Now(), nil)
}

func TestTransactionService_Create(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db, models.KindExpense)

	// 校验类别归属
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(expenseCategoryRow(2, 1))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectCommit()

	// 回读完整记录
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(10, 1, 25.50, "午餐", time.Now(), 2, nil, nil, time.Now(), time.Now(), nil))
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(expenseCategoryRow(2, 1))

	req := &TransactionRequest{
		Amount:      validation.Some(json.Number("25.50")),
		Description: validation.Some("午餐"),
		CategoryID:  validation.Some(uint(2)),
	}
	tx, err := svc.Create(1, req)
	require.NoError(t, err)
	assert.Equal(t, uint(10), tx.ID)
	assert.Equal(t, 25.50, tx.Amount)
	assert.Equal(t, "餐饮", tx.Category.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_Create_AmountRequired(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db, models.KindExpense)

	req := &TransactionRequest{
		Description: validation.Some("午餐"),
		CategoryID:  validation.Some(uint(2)),
	}
	_, err := svc.Create(1, req)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Contains(t, err.Error(), "金额不能为空")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_Create_CategoryWrongTypeOrOwner(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db, models.KindExpense)

	// 类别不属于当前用户或类型不符时查不到记录
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns()))

	req := &TransactionRequest{
		Amount:      validation.Some(json.Number("25.50")),
		Description: validation.Some("午餐"),
		CategoryID:  validation.Some(uint(99)),
	}
	_, err := svc.Create(1, req)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Contains(t, err.Error(), "类别必须是支出类型且属于当前用户")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_Create_IncomeKindLabel(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db, models.KindIncome)

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns()))

	req := &TransactionRequest{
		Amount:      validation.Some(json.Number("8000")),
		Description: validation.Some("工资"),
		CategoryID:  validation.Some(uint(1)),
	}
	_, err := svc.Create(1, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "类别必须是收入类型且属于当前用户")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_Get_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db, models.KindExpense)

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()))

	_, err := svc.Get(1, 42)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Contains(t, err.Error(), "记录不存在")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_Update_EmptyBodyIsNoOp(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db, models.KindExpense)

	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(transactionColumns()).
			AddRow(10, 1, 25.50, "午餐", time.Now(), 2, nil, nil, time.Now(), time.Now(), nil)
	}

	// 先读取记录，再回读；中间没有 UPDATE
	mock.ExpectQuery("SELECT .* FROM `transactions`").WillReturnRows(row())
	mock.ExpectQuery("SELECT .* FROM `categories`").WillReturnRows(expenseCategoryRow(2, 1))
	mock.ExpectQuery("SELECT .* FROM `transactions`").WillReturnRows(row())
	mock.ExpectQuery("SELECT .* FROM `categories`").WillReturnRows(expenseCategoryRow(2, 1))

	tx, err := svc.Update(1, 10, &TransactionRequest{})
	require.NoError(t, err)
	assert.Equal(t, uint(10), tx.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_Update_ClearNotes(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db, models.KindExpense)

	notes := "老备注"
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(10, 1, 25.50, "午餐", time.Now(), 2, notes, nil, time.Now(), time.Now(), nil))
	mock.ExpectQuery("SELECT .* FROM `categories`").WillReturnRows(expenseCategoryRow(2, 1))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `transactions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(10, 1, 25.50, "午餐", time.Now(), 2, nil, nil, time.Now(), time.Now(), nil))
	mock.ExpectQuery("SELECT .* FROM `categories`").WillReturnRows(expenseCategoryRow(2, 1))

	// notes 传空字符串表示清空
	tx, err := svc.Update(1, 10, &TransactionRequest{Notes: validation.Some("")})
	require.NoError(t, err)
	assert.Nil(t, tx.Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_Update_InvalidAmountRejected(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db, models.KindExpense)

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(10, 1, 25.50, "午餐", time.Now(), 2, nil, nil, time.Now(), time.Now(), nil))
	mock.ExpectQuery("SELECT .* FROM `categories`").WillReturnRows(expenseCategoryRow(2, 1))

	_, err := svc.Update(1, 10, &TransactionRequest{
		Amount: validation.Some(json.Number("12.345")),
	})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Contains(t, err.Error(), "金额最多保留2位小数")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_List(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db, models.KindExpense)

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(120))

	rows := sqlmock.NewRows(transactionColumns())
	for i := 0; i < 2; i++ {
		rows.AddRow(uint(100+i), 1, 25.50, "午餐", time.Now(), 2, nil, nil, time.Now(), time.Now(), nil)
	}
	mock.ExpectQuery("SELECT .* FROM `transactions`").WillReturnRows(rows)
	mock.ExpectQuery("SELECT .* FROM `categories`").WillReturnRows(expenseCategoryRow(2, 1))

	items, pagination, err := svc.List(1, &TransactionQuery{Page: 3, Limit: 50})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 3, pagination.Page)
	assert.Equal(t, 50, pagination.Limit)
	assert.Equal(t, int64(120), pagination.Total)
	assert.Equal(t, 3, pagination.Pages)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_List_InvalidDateFails(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db, models.KindExpense)

	_, _, err := svc.List(1, &TransactionQuery{StartDate: "bad"})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db, models.KindExpense)

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(10, 1, 25.50, "午餐", time.Now(), 2, nil, nil, time.Now(), time.Now(), nil))
	mock.ExpectQuery("SELECT .* FROM `categories`").WillReturnRows(expenseCategoryRow(2, 1))

	// 软删除 = UPDATE deleted_at
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `transactions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Delete(1, 10))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_Delete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db, models.KindExpense)

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()))

	err := svc.Delete(1, 999)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

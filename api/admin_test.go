package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func adminTestRouter(db *gorm.DB, currentUserID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(setUserIDMiddleware(currentUserID))
	h := NewAdminHandler(db)
	r.GET("/admin/users", h.ListUsers)
	r.GET("/admin/users/:id", h.GetUser)
	r.PUT("/admin/users/:id/admin", h.SetAdmin)
	r.DELETE("/admin/users/:id", h.DeleteUser)
	r.GET("/admin/stats", h.GetStats)
	return r
}

func TestAdminHandler_ListUsers(t *testing.T) {
	db, mock := setupMockDB(t)
	testConfig(t)

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(1, "admin", "admin@example.com", "hash", true, time.Now(), time.Now(), nil).
			AddRow(2, "testuser", "test@example.com", "hash", false, time.Now(), time.Now(), nil))

	router := adminTestRouter(db, 1)
	req := httptest.NewRequest("GET", "/admin/users?search=test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	list := data["list"].([]interface{})
	assert.Len(t, list, 2)
	// 密码不下发
	assert.NotContains(t, w.Body.String(), "hash")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminHandler_SetAdmin_SelfRejected(t *testing.T) {
	db, mock := setupMockDB(t)
	testConfig(t)

	router := adminTestRouter(db, 1)
	req := httptest.NewRequest("PUT", "/admin/users/1/admin", bytes.NewBufferString(`{"is_admin":false}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "不能修改自己的管理员权限")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminHandler_DeleteUser_SelfRejected(t *testing.T) {
	db, mock := setupMockDB(t)
	testConfig(t)

	router := adminTestRouter(db, 1)
	req := httptest.NewRequest("DELETE", "/admin/users/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "不能删除自己")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminHandler_DeleteUser(t *testing.T) {
	db, mock := setupMockDB(t)
	testConfig(t)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(2, "testuser", "test@example.com", "hash", false, time.Now(), time.Now(), nil))

	// 删除交易、类别和用户在同一事务，均为软删除
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `transactions`").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE `categories`").WillReturnResult(sqlmock.NewResult(0, 13))
	mock.ExpectExec("UPDATE `users`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := adminTestRouter(db, 1)
	req := httptest.NewRequest("DELETE", "/admin/users/2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "删除成功")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminHandler_GetStats(t *testing.T) {
	db, mock := setupMockDB(t)
	testConfig(t)

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(200))
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(1234.56))
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(9999.99))

	router := adminTestRouter(db, 1)
	req := httptest.NewRequest("GET", "/admin/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(5), data["user_count"])
	assert.Equal(t, float64(200), data["transaction_count"])
	require.NoError(t, mock.ExpectationsWereMet())
}

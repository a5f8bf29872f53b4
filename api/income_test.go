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
)

func TestIncomeHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 查询收入类型
	mock.ExpectQuery("SELECT .* FROM `income_categories`").
		WithArgs("工资").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "sort", "color", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, "工资", 10, "#22c55e", time.Now(), time.Now(), nil))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `incomes`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/incomes", NewIncomeHandler().Create)

	body := `{"source":"公司工资","amount":8000,"type":"工资","description":"1月份工资","income_time":"2024-01-10 09:00:00"}`
	req := httptest.NewRequest("POST", "/incomes", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeHandler_Create_InvalidType(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `income_categories`").
		WithArgs("无效类型").
		WillReturnRows(sqlmock.NewRows([]string{}))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/incomes", NewIncomeHandler().Create)

	body := `{"source":"公司","amount":100,"type":"无效类型","income_time":"2024-01-10 09:00:00"}`
	req := httptest.NewRequest("POST", "/incomes", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 删除收入同样走归档流程，先写归档文档再软删除
func TestIncomeHandler_Delete_MovesToArchive(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()

	mock.ExpectQuery("SELECT .* FROM `incomes`").
		WithArgs(9, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "source", "amount", "type", "description", "income_time", "created_at", "updated_at", "deleted_at"}).
			AddRow(9, 1, "公司", 5000.0, "工资", "", now, now, now, nil))

	// 已有归档文档，整体更新
	mock.ExpectQuery("SELECT .* FROM `archive_documents`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expenses", "incomes", "created_at", "updated_at"}).
			AddRow(3, 1, []byte(`[]`), []byte(`[]`), now, now))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `archive_documents`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `incomes` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/incomes/:id", NewIncomeHandler().Delete)

	req := httptest.NewRequest("DELETE", "/incomes/9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "已移入归档", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(9), data["original_id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeHandler_Delete_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `incomes`").
		WithArgs(999, 1).
		WillReturnRows(sqlmock.NewRows([]string{}))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/incomes/:id", NewIncomeHandler().Delete)

	req := httptest.NewRequest("DELETE", "/incomes/999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"osteo-upgrade-go/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeSettingService 是 service.SettingService 的测试替身。
type fakeSettingService struct {
	values map[string]string
}

func (f *fakeSettingService) Get(key string) (*model.Setting, error) {
	value, ok := f.values[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.Setting{Key: key, Value: value}, nil
}

func (f *fakeSettingService) Set(key, value string) error {
	f.values[key] = value
	return nil
}

func (f *fakeSettingService) FreemiumTreeID() uint { return 1 }

func newSettingRouter(svc *fakeSettingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewSettingHandler(svc)
	r.GET("/api/settings/:key", h.Get)
	r.PUT("/api/settings/:key", h.Set)
	return r
}

func TestSettingHandlerGet(t *testing.T) {
	svc := &fakeSettingService{values: map[string]string{"premium_price": "9.99"}}
	r := newSettingRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/settings/premium_price", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "9.99")
}

func TestSettingHandlerGetMissingKey(t *testing.T) {
	svc := &fakeSettingService{values: map[string]string{}}
	r := newSettingRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/settings/inconnu", nil)
	r.ServeHTTP(w, req)

	// 缺失的参数不是错误，data 为 null
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":null`)
}

func TestSettingHandlerSet(t *testing.T) {
	svc := &fakeSettingService{values: map[string]string{}}
	r := newSettingRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/settings/freemium_tree_id", strings.NewReader(`{"value":"3"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", svc.values["freemium_tree_id"])
}

func TestSettingHandlerSetMissingValue(t *testing.T) {
	svc := &fakeSettingService{values: map[string]string{}}
	r := newSettingRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/settings/freemium_tree_id", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

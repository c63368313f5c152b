package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"osteo-upgrade-go/internal/model"
	"osteo-upgrade-go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeTreeService 是 service.TreeService 的测试替身。
type fakeTreeService struct {
	items   []service.TreeListItem
	trees   map[uint]*model.DecisionTree
	lockAll bool
}

func (f *fakeTreeService) List(user *model.User) ([]service.TreeListItem, error) {
	return f.items, nil
}

func (f *fakeTreeService) Get(user *model.User, id uint) (*model.DecisionTree, error) {
	if f.lockAll && user.Status == model.StatusFreemium {
		return nil, service.ErrTreeLocked
	}
	tree, ok := f.trees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return tree, nil
}

func (f *fakeTreeService) Create(name, icon string, nodes []model.Node, createdBy uint) (*model.DecisionTree, error) {
	if err := service.ValidateTreeNodes(nodes); err != nil {
		return nil, err
	}
	return &model.DecisionTree{ID: 1, Name: name, Icon: icon, Nodes: nodes}, nil
}

func (f *fakeTreeService) Update(id uint, name, icon string, nodes []model.Node) error {
	return service.ValidateTreeNodes(nodes)
}

func (f *fakeTreeService) Delete(id uint) error { return nil }

// injectUser 模拟 AuthMiddleware 注入用户对象。
func injectUser(user *model.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", user)
		c.Next()
	}
}

func newTreeRouter(svc service.TreeService, user *model.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewTreeHandler(svc)
	r.GET("/api/trees", injectUser(user), h.List)
	r.GET("/api/trees/:id", injectUser(user), h.Get)
	r.POST("/api/trees", injectUser(user), h.Create)
	return r
}

func TestTreeHandlerList(t *testing.T) {
	svc := &fakeTreeService{items: []service.TreeListItem{
		{ID: 1, Name: "Cervicale", Icon: "🦴", Locked: false},
		{ID: 2, Name: "Lombaire", Icon: "🦴", Locked: true},
	}}
	r := newTreeRouter(svc, &model.User{ID: 5, Status: model.StatusFreemium})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/trees", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []service.TreeListItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.True(t, body.Data[1].Locked)
}

func TestTreeHandlerGetLocked(t *testing.T) {
	svc := &fakeTreeService{lockAll: true, trees: map[uint]*model.DecisionTree{2: {ID: 2, Name: "Lombaire"}}}
	r := newTreeRouter(svc, &model.User{ID: 5, Status: model.StatusFreemium})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/trees/2", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTreeHandlerGetNotFound(t *testing.T) {
	svc := &fakeTreeService{trees: map[uint]*model.DecisionTree{}}
	r := newTreeRouter(svc, &model.User{ID: 1, Status: model.StatusAdmin})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/trees/42", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTreeHandlerGetInvalidID(t *testing.T) {
	svc := &fakeTreeService{}
	r := newTreeRouter(svc, &model.User{ID: 1, Status: model.StatusAdmin})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/trees/abc", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTreeHandlerCreateValidation(t *testing.T) {
	svc := &fakeTreeService{}
	r := newTreeRouter(svc, &model.User{ID: 1, Status: model.StatusAdmin})

	// 树只有一个指向不存在节点的答案，服务端校验必须拦截
	payload := `{"name":"Épaule","nodes":[{"id":1,"type":"question","text":"?","answers":[{"text":"Oui","next":99}]}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trees", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "nœud")
}

func TestTreeHandlerCreateOK(t *testing.T) {
	svc := &fakeTreeService{}
	r := newTreeRouter(svc, &model.User{ID: 1, Status: model.StatusAdmin})

	payload := `{"name":"Épaule","nodes":[{"id":1,"type":"result","title":"Bénin","severity":"success"}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trees", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

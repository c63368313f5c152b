// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"osteo-upgrade-go/internal/model"
	"osteo-upgrade-go/internal/repository"
	"osteo-upgrade-go/internal/traversal"
	"osteo-upgrade-go/pkg/log"
	"osteo-upgrade-go/pkg/token"
)

const (
	// 问诊会话在 Redis 中的保留时长。超时未续的会话视为放弃。
	traversalTTL = 24 * time.Hour

	traversalTokenLen = 16
)

// ErrSessionNotFound 表示问诊会话不存在或已过期。
var ErrSessionNotFound = errors.New("traversal session not found")

// traversalRecord 是暂存在 Redis 中的会话内容。
// UserID 冗余存储，用于拒绝拿着别人令牌的请求。
type traversalRecord struct {
	UserID uint            `json:"user_id"`
	State  traversal.State `json:"state"`
}

// TraversalView 是问诊会话接口统一的响应形态。
type TraversalView struct {
	Token        string      `json:"token"`
	TreeID       uint        `json:"tree_id"`
	Node         *model.Node `json:"node"`
	Path         []int       `json:"path"`
	Saved        bool        `json:"saved"`
	DiagnosticID uint        `json:"diagnostic_id,omitempty"`
}

// TraversalService 接口定义了服务端问诊会话的业务操作。
// 会话状态以不透明令牌为键暂存在 Redis 中，请求之间无需粘性连接。
type TraversalService interface {
	Start(ctx context.Context, user *model.User, treeID uint) (*TraversalView, error)
	Get(ctx context.Context, userID uint, tok string) (*TraversalView, error)
	Answer(ctx context.Context, userID uint, tok string, next *int) (*TraversalView, error)
	Back(ctx context.Context, userID uint, tok string) (*TraversalView, error)
}

type traversalService struct {
	treeRepo       repository.TreeRepository
	traversalRepo  repository.TraversalRepository
	settingService SettingService
	recorder       traversal.Recorder
}

// NewTraversalService 创建一个新的 TraversalService 实例。
func NewTraversalService(treeRepo repository.TreeRepository, traversalRepo repository.TraversalRepository,
	settingService SettingService, recorder traversal.Recorder) TraversalService {
	return &traversalService{
		treeRepo:       treeRepo,
		traversalRepo:  traversalRepo,
		settingService: settingService,
		recorder:       recorder,
	}
}

// Start 在指定的树上开启一次问诊会话，受访问分级约束。
func (s *traversalService) Start(ctx context.Context, user *model.User, treeID uint) (*TraversalView, error) {
	if !CanAccessTree(user.Status, treeID, s.settingService.FreemiumTreeID()) {
		return nil, ErrTreeLocked
	}

	tree, err := s.treeRepo.FindByID(treeID)
	if err != nil {
		return nil, err
	}
	walker, err := traversal.NewWalker(tree)
	if err != nil {
		return nil, err
	}

	tok := token.GenerateRandomString(traversalTokenLen)
	if err := s.save(ctx, tok, user.ID, walker.State()); err != nil {
		return nil, err
	}
	return s.view(tok, tree, walker)
}

// Get 返回会话的当前节点。
func (s *traversalService) Get(ctx context.Context, userID uint, tok string) (*TraversalView, error) {
	tree, walker, err := s.load(ctx, userID, tok)
	if err != nil {
		return nil, err
	}
	return s.view(tok, tree, walker)
}

// Answer 在会话的当前节点上作答并前进。
// 到达结果节点时持久化诊断记录（同一会话最多一次）。持久化失败
// 不影响结果展示：前进照常保存，视图的 saved 保持 false，没有
// 报告下载入口，后续再次到达结果节点可以重试。
func (s *traversalService) Answer(ctx context.Context, userID uint, tok string, next *int) (*TraversalView, error) {
	tree, walker, err := s.load(ctx, userID, tok)
	if err != nil {
		return nil, err
	}
	if err := walker.Answer(next); err != nil {
		return nil, err
	}
	if _, _, err := walker.Arrive(ctx, userID, s.recorder); err != nil {
		log.Warnf("持久化诊断记录失败: token=%s, error: %v", tok, err)
	}
	if err := s.save(ctx, tok, userID, walker.State()); err != nil {
		return nil, err
	}
	return s.view(tok, tree, walker)
}

// Back 回退会话一步。已在起点时保持原地。
func (s *traversalService) Back(ctx context.Context, userID uint, tok string) (*TraversalView, error) {
	tree, walker, err := s.load(ctx, userID, tok)
	if err != nil {
		return nil, err
	}
	if walker.Back() {
		if err := s.save(ctx, tok, userID, walker.State()); err != nil {
			return nil, err
		}
	}
	return s.view(tok, tree, walker)
}

func (s *traversalService) save(ctx context.Context, tok string, userID uint, st traversal.State) error {
	record := traversalRecord{UserID: userID, State: st}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.traversalRepo.Save(ctx, tok, data, traversalTTL)
}

// load 取回并恢复一个会话。令牌不存在、已过期或归属不符时
// 一律返回 ErrSessionNotFound。
func (s *traversalService) load(ctx context.Context, userID uint, tok string) (*model.DecisionTree, *traversal.Walker, error) {
	data, err := s.traversalRepo.Load(ctx, tok)
	if err != nil {
		return nil, nil, ErrSessionNotFound
	}
	var record traversalRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, nil, ErrSessionNotFound
	}
	if record.UserID != userID {
		return nil, nil, ErrSessionNotFound
	}

	tree, err := s.treeRepo.FindByID(record.State.TreeID)
	if err != nil {
		return nil, nil, err
	}
	walker, err := traversal.Resume(tree, record.State)
	if err != nil {
		return nil, nil, err
	}
	return tree, walker, nil
}

func (s *traversalService) view(tok string, tree *model.DecisionTree, walker *traversal.Walker) (*TraversalView, error) {
	node, err := walker.Current()
	if err != nil {
		return nil, err
	}
	return &TraversalView{
		Token:        tok,
		TreeID:       tree.ID,
		Node:         node,
		Path:         walker.Path(),
		Saved:        walker.Saved(),
		DiagnosticID: walker.DiagnosticID(),
	}, nil
}

// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"time"

	"osteo-upgrade-go/internal/model"
	"osteo-upgrade-go/internal/repository"
	"osteo-upgrade-go/pkg/events"
	"osteo-upgrade-go/pkg/log"

	"gorm.io/gorm"
)

// 用户历史列表单次最多返回的记录数。
const diagnosticListLimit = 50

// EventPublisher 发布诊断完成事件到消息队列。
// 发布失败不影响诊断记录本身，只影响统计管道。
type EventPublisher interface {
	PublishDiagnosticCompleted(ctx context.Context, event events.DiagnosticCompleted) error
}

// DiagnosticInput 是诊断记录创建接口的请求体，
// 结果字段是客户端在走查结束时固化的反范式化副本。
type DiagnosticInput struct {
	TreeID            uint     `json:"tree_id" binding:"required"`
	TreeName          string   `json:"tree_name" binding:"required"`
	Path              []int    `json:"path" binding:"required"`
	ResultTitle       string   `json:"result_title"`
	ResultSeverity    string   `json:"result_severity"`
	ResultDescription string   `json:"result_description"`
	Recommendations   []string `json:"recommendations"`
}

// DiagnosticService 接口定义了诊断会话记录的业务操作。
// 它同时实现 traversal.Recorder，作为走查到达结果节点时的持久化协作者。
type DiagnosticService interface {
	Record(ctx context.Context, session *model.DiagnosticSession) (uint, error)
	Create(ctx context.Context, userID uint, input DiagnosticInput) (uint, error)
	ListForUser(userID uint) ([]model.DiagnosticSession, error)
	GetOwned(id, userID uint) (*model.DiagnosticSession, error)
}

type diagnosticService struct {
	diagnosticRepo repository.DiagnosticRepository
	treeRepo       repository.TreeRepository
	publisher      EventPublisher
}

// NewDiagnosticService 创建一个新的 DiagnosticService 实例。
func NewDiagnosticService(diagnosticRepo repository.DiagnosticRepository, treeRepo repository.TreeRepository, publisher EventPublisher) DiagnosticService {
	return &diagnosticService{
		diagnosticRepo: diagnosticRepo,
		treeRepo:       treeRepo,
		publisher:      publisher,
	}
}

// Record 持久化一条诊断记录并发布统计事件。
// 单行原子写入；事件发布是尽力而为的。
func (s *diagnosticService) Record(ctx context.Context, session *model.DiagnosticSession) (uint, error) {
	if err := s.diagnosticRepo.Create(session); err != nil {
		return 0, err
	}

	if s.publisher != nil {
		event := events.DiagnosticCompleted{
			DiagnosticID: session.ID,
			UserID:       session.UserID,
			TreeID:       session.TreeID,
			TreeName:     session.TreeName,
			Severity:     session.ResultSeverity,
			CompletedAt:  time.Now(),
		}
		if err := s.publisher.PublishDiagnosticCompleted(ctx, event); err != nil {
			log.Warnf("发布诊断完成事件失败: diagnosticId=%d, error: %v", session.ID, err)
		}
	}
	return session.ID, nil
}

// Create 校验客户端提交的走查结果并持久化。
// 提交的路径会在服务端按树重放：每一步都必须沿既有答案边前进，
// 且终点必须是结果节点。
func (s *diagnosticService) Create(ctx context.Context, userID uint, input DiagnosticInput) (uint, error) {
	tree, err := s.treeRepo.FindByID(input.TreeID)
	if err != nil {
		return 0, err
	}
	if err := validatePath(tree, input.Path); err != nil {
		return 0, err
	}
	switch input.ResultSeverity {
	case model.SeveritySuccess, model.SeverityWarning, model.SeverityDanger:
	default:
		return 0, &ValidationError{Message: fmt.Sprintf("sévérité inconnue '%s'", input.ResultSeverity)}
	}

	session := &model.DiagnosticSession{
		UserID:             userID,
		TreeID:             input.TreeID,
		TreeName:           input.TreeName,
		PathIDs:            input.Path,
		ResultTitle:        input.ResultTitle,
		ResultSeverity:     input.ResultSeverity,
		ResultDescription:  input.ResultDescription,
		RecommendationList: input.Recommendations,
	}
	return s.Record(ctx, session)
}

// ListForUser 返回某个用户的诊断历史，最新在前。
func (s *diagnosticService) ListForUser(userID uint) ([]model.DiagnosticSession, error) {
	return s.diagnosticRepo.FindByUser(userID, diagnosticListLimit)
}

// GetOwned 返回一条诊断记录，仅限记录的归属用户。
// 归属不符时返回 gorm.ErrRecordNotFound，不向外泄露记录是否存在。
func (s *diagnosticService) GetOwned(id, userID uint) (*model.DiagnosticSession, error) {
	session, err := s.diagnosticRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return session, nil
}

// validatePath 按树重放一条提交的走查路径。
func validatePath(tree *model.DecisionTree, path []int) error {
	if len(path) == 0 {
		return &ValidationError{Message: "le chemin est vide"}
	}
	if len(tree.Nodes) == 0 {
		return &ValidationError{Message: "l'arbre ne contient aucun nœud"}
	}
	if path[0] != tree.Nodes[0].ID {
		return &ValidationError{NodeID: path[0], Message: "le chemin ne démarre pas au premier nœud de l'arbre"}
	}

	for i := 0; i < len(path)-1; i++ {
		node := tree.FindNode(path[i])
		if node == nil {
			return &ValidationError{NodeID: path[i], Message: "nœud inexistant dans l'arbre"}
		}
		if node.Type != model.NodeTypeQuestion && node.Type != model.NodeTypeTest {
			return &ValidationError{NodeID: path[i], Message: "ce nœud n'accepte pas de réponse"}
		}
		if !hasEdge(node, path[i+1]) {
			return &ValidationError{NodeID: path[i], Message: fmt.Sprintf("aucune réponse ne mène au nœud %d", path[i+1])}
		}
	}

	last := tree.FindNode(path[len(path)-1])
	if last == nil {
		return &ValidationError{NodeID: path[len(path)-1], Message: "nœud inexistant dans l'arbre"}
	}
	if last.Type != model.NodeTypeResult {
		return &ValidationError{NodeID: last.ID, Message: "le chemin ne se termine pas sur un résultat"}
	}
	return nil
}

// hasEdge 报告节点上是否存在指向 target 的答案边。
func hasEdge(node *model.Node, target int) bool {
	for _, answer := range node.Answers {
		if answer.Next != nil && *answer.Next == target {
			return true
		}
	}
	return false
}

// Package service 包含了应用的业务逻辑层。
package service

import (
	"fmt"
	"time"

	"osteo-upgrade-go/internal/model"
	"osteo-upgrade-go/internal/repository"
)

// TreeListItem 是树列表接口返回的条目：不携带节点数据，
// 但带有针对请求用户计算出的 locked 标记。
type TreeListItem struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Locked    bool      `json:"locked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidationError 表示树保存时的结构校验失败，指明出错的节点和原因。
type ValidationError struct {
	NodeID  int
	Message string
}

func (e *ValidationError) Error() string {
	if e.NodeID != 0 {
		return fmt.Sprintf("noeud %d : %s", e.NodeID, e.Message)
	}
	return e.Message
}

// TreeService 接口定义了决策树的业务操作。
type TreeService interface {
	List(user *model.User) ([]TreeListItem, error)
	Get(user *model.User, id uint) (*model.DecisionTree, error)
	Create(name, icon string, nodes []model.Node, createdBy uint) (*model.DecisionTree, error)
	Update(id uint, name, icon string, nodes []model.Node) error
	Delete(id uint) error
}

type treeService struct {
	treeRepo   repository.TreeRepository
	settingSvc SettingService
}

// NewTreeService 创建一个新的 TreeService 实例。
func NewTreeService(treeRepo repository.TreeRepository, settingSvc SettingService) TreeService {
	return &treeService{treeRepo: treeRepo, settingSvc: settingSvc}
}

// List 返回所有树的列表，并按请求用户的角色标注 locked。
// 被锁定的树对 freemium 用户可见但不可打开。
func (s *treeService) List(user *model.User) ([]TreeListItem, error) {
	trees, err := s.treeRepo.FindAll()
	if err != nil {
		return nil, err
	}

	freemiumTreeID := s.settingSvc.FreemiumTreeID()
	items := make([]TreeListItem, 0, len(trees))
	for _, tree := range trees {
		items = append(items, TreeListItem{
			ID:        tree.ID,
			Name:      tree.Name,
			Icon:      tree.Icon,
			Locked:    !CanAccessTree(user.Status, tree.ID, freemiumTreeID),
			CreatedAt: tree.CreatedAt,
			UpdatedAt: tree.UpdatedAt,
		})
	}
	return items, nil
}

// Get 返回一棵树的完整内容（含节点）。
// freemium 用户访问未解锁的树时返回 ErrTreeLocked。
func (s *treeService) Get(user *model.User, id uint) (*model.DecisionTree, error) {
	tree, err := s.treeRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !CanAccessTree(user.Status, tree.ID, s.settingSvc.FreemiumTreeID()) {
		return nil, ErrTreeLocked
	}
	return tree, nil
}

// Create 校验并持久化一棵新树。
func (s *treeService) Create(name, icon string, nodes []model.Node, createdBy uint) (*model.DecisionTree, error) {
	if err := ValidateTreeNodes(nodes); err != nil {
		return nil, err
	}
	if icon == "" {
		icon = "🦴"
	}
	tree := &model.DecisionTree{
		Name:      name,
		Icon:      icon,
		Nodes:     nodes,
		CreatedBy: createdBy,
	}
	if err := tree.EncodeNodes(); err != nil {
		return nil, err
	}
	if err := s.treeRepo.Create(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Update 校验并覆盖一棵已存在的树。
func (s *treeService) Update(id uint, name, icon string, nodes []model.Node) error {
	if err := ValidateTreeNodes(nodes); err != nil {
		return err
	}
	tree, err := s.treeRepo.FindByID(id)
	if err != nil {
		return err
	}
	tree.Name = name
	if icon != "" {
		tree.Icon = icon
	}
	tree.Nodes = nodes
	if err := tree.EncodeNodes(); err != nil {
		return err
	}
	return s.treeRepo.Update(tree)
}

// Delete 删除一棵树。历史诊断记录不引用树本体，不受影响。
func (s *treeService) Delete(id uint) error {
	return s.treeRepo.Delete(id)
}

// ValidateTreeNodes 在保存时校验树的结构完整性：
// 至少一个节点、节点 id 唯一、节点类型与严重程度取值合法、
// 每个答案的 next 必须非空且指向树内存在的节点。
// 悬空引用在这里拦截，而不是等到走查时才暴露。
func ValidateTreeNodes(nodes []model.Node) error {
	if len(nodes) == 0 {
		return &ValidationError{Message: "l'arbre doit contenir au moins un nœud"}
	}

	ids := make(map[int]struct{}, len(nodes))
	for _, node := range nodes {
		if _, dup := ids[node.ID]; dup {
			return &ValidationError{NodeID: node.ID, Message: "identifiant de nœud dupliqué"}
		}
		ids[node.ID] = struct{}{}
	}

	for _, node := range nodes {
		switch node.Type {
		case model.NodeTypeQuestion, model.NodeTypeTest:
			for _, answer := range node.Answers {
				if answer.Next == nil {
					return &ValidationError{NodeID: node.ID, Message: fmt.Sprintf("la réponse '%s' n'a pas de cible", answer.Text)}
				}
				if _, ok := ids[*answer.Next]; !ok {
					return &ValidationError{NodeID: node.ID, Message: fmt.Sprintf("la réponse '%s' pointe vers un nœud inexistant (%d)", answer.Text, *answer.Next)}
				}
			}
		case model.NodeTypeResult:
			switch node.Severity {
			case model.SeveritySuccess, model.SeverityWarning, model.SeverityDanger:
			default:
				return &ValidationError{NodeID: node.ID, Message: fmt.Sprintf("sévérité inconnue '%s'", node.Severity)}
			}
		default:
			return &ValidationError{NodeID: node.ID, Message: fmt.Sprintf("type de nœud inconnu '%s'", node.Type)}
		}
	}
	return nil
}

// Package traversal 实现了决策树的逐节点走查状态机。
//
// 一次走查由一个 Walker 承载：从树的第一个节点出发，记录访问路径，
// 支持基于栈的回退，到达结果节点时通过 Recorder 协作者最多持久化
// 一次诊断记录。走查过程从不修改树本身。
package traversal

import (
	"context"
	"errors"

	"osteo-upgrade-go/internal/model"
)

var (
	// ErrEmptyTree 表示树中没有任何节点，无法开始走查。
	ErrEmptyTree = errors.New("tree has no nodes")
	// ErrNodeNotFound 表示当前节点 id 在树中无法解析（悬空引用），
	// 走查无法继续渲染，调用方应直接报错而不是尝试修复。
	ErrNodeNotFound = errors.New("node not found in tree")
	// ErrNotAnswerable 表示当前节点不是问题或测试节点，不接受作答。
	ErrNotAnswerable = errors.New("current node does not accept answers")
	// ErrTreeMismatch 表示恢复状态时给定的树与状态不匹配。
	ErrTreeMismatch = errors.New("state does not belong to this tree")
)

// Recorder 是到达结果节点时持久化诊断记录的协作者。
// 返回新记录的标识符，调用方据此提供报告下载入口。
type Recorder interface {
	Record(ctx context.Context, session *model.DiagnosticSession) (uint, error)
}

// Walker 是一次走查实例的完整状态。
// 一个 Walker 只被一个用户在一个会话中使用，不做并发保护。
type Walker struct {
	tree         *model.DecisionTree
	currentID    int
	path         []int
	saved        bool
	diagnosticID uint
}

// State 是 Walker 的可序列化快照，用于在请求之间暂存（如 Redis）。
type State struct {
	TreeID       uint  `json:"tree_id"`
	CurrentID    int   `json:"current_id"`
	Path         []int `json:"path"`
	Saved        bool  `json:"saved"`
	DiagnosticID uint  `json:"diagnostic_id"`
}

// NewWalker 在给定的树上开始一次新的走查。
// 起点固定为树中存储顺序的第一个节点，路径为空。
func NewWalker(tree *model.DecisionTree) (*Walker, error) {
	if tree == nil || len(tree.Nodes) == 0 {
		return nil, ErrEmptyTree
	}
	return &Walker{
		tree:      tree,
		currentID: tree.Nodes[0].ID,
		path:      []int{},
	}, nil
}

// Resume 从快照恢复一次走查。
func Resume(tree *model.DecisionTree, st State) (*Walker, error) {
	if tree == nil || len(tree.Nodes) == 0 {
		return nil, ErrEmptyTree
	}
	if tree.ID != st.TreeID {
		return nil, ErrTreeMismatch
	}
	path := make([]int, len(st.Path))
	copy(path, st.Path)
	return &Walker{
		tree:         tree,
		currentID:    st.CurrentID,
		path:         path,
		saved:        st.Saved,
		diagnosticID: st.DiagnosticID,
	}, nil
}

// State 返回当前走查状态的快照。
func (w *Walker) State() State {
	path := make([]int, len(w.path))
	copy(path, w.path)
	return State{
		TreeID:       w.tree.ID,
		CurrentID:    w.currentID,
		Path:         path,
		Saved:        w.saved,
		DiagnosticID: w.diagnosticID,
	}
}

// Current 返回当前节点。id 无法解析时返回 ErrNodeNotFound。
func (w *Walker) Current() (*model.Node, error) {
	node := w.tree.FindNode(w.currentID)
	if node == nil {
		return nil, ErrNodeNotFound
	}
	return node, nil
}

// CurrentID 返回当前节点 id。
func (w *Walker) CurrentID() int {
	return w.currentID
}

// Path 返回已访问节点 id 的副本（不含当前节点）。
func (w *Walker) Path() []int {
	path := make([]int, len(w.path))
	copy(path, w.path)
	return path
}

// Answer 选择当前节点上的一个答案并前进到其目标节点。
// 仅问题和测试节点可作答；next 为 nil 是编辑期遗留的死路，按
// no-op 处理。目标 id 是否可解析在下一次 Current 时才会暴露。
func (w *Walker) Answer(next *int) error {
	node, err := w.Current()
	if err != nil {
		return err
	}
	if node.Type != model.NodeTypeQuestion && node.Type != model.NodeTypeTest {
		return ErrNotAnswerable
	}
	if next == nil {
		return nil
	}
	w.path = append(w.path, w.currentID)
	w.currentID = *next
	return nil
}

// Back 回退一步：弹出路径栈顶并将其设为当前节点。
// 没有前进历史可恢复（纯栈式撤销）。路径为空时返回 false。
func (w *Walker) Back() bool {
	if len(w.path) == 0 {
		return false
	}
	w.currentID = w.path[len(w.path)-1]
	w.path = w.path[:len(w.path)-1]
	return true
}

// Saved 报告本次走查是否已成功持久化过诊断记录。
func (w *Walker) Saved() bool {
	return w.saved
}

// DiagnosticID 返回已持久化诊断记录的标识符，未持久化时为 0。
func (w *Walker) DiagnosticID() uint {
	return w.diagnosticID
}

// Arrive 在当前节点为结果节点时触发一次性持久化副作用。
//
// 返回值 recorded 仅在本次调用实际写入了记录时为 true。同一走查
// 实例内重复到达结果节点不会重复写入；持久化失败时不置位已保存
// 标记（结果仍可展示，只是没有报告下载入口），后续到达可以重试。
// 当前节点不是结果节点时是 no-op。
func (w *Walker) Arrive(ctx context.Context, userID uint, rec Recorder) (diagnosticID uint, recorded bool, err error) {
	node, err := w.Current()
	if err != nil {
		return 0, false, err
	}
	if node.Type != model.NodeTypeResult {
		return 0, false, nil
	}
	if w.saved {
		return w.diagnosticID, false, nil
	}

	session := &model.DiagnosticSession{
		UserID:             userID,
		TreeID:             w.tree.ID,
		TreeName:           w.tree.Name,
		PathIDs:            append(w.Path(), w.currentID),
		ResultTitle:        node.Title,
		ResultSeverity:     node.Severity,
		ResultDescription:  node.Description,
		RecommendationList: node.Recommendations,
	}

	id, err := rec.Record(ctx, session)
	if err != nil {
		return 0, false, err
	}
	w.saved = true
	w.diagnosticID = id
	return id, true, nil
}

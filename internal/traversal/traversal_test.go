package traversal

import (
	"context"
	"errors"
	"testing"

	"osteo-upgrade-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

// cervicaleTree 构造文档中示例的颈椎树：
// 问题节点 1 分别指向 danger 结果 2 和 success 结果 3。
func cervicaleTree() *model.DecisionTree {
	return &model.DecisionTree{
		ID:   1,
		Name: "Cervicale",
		Icon: "🦴",
		Nodes: []model.Node{
			{
				ID:   1,
				Type: model.NodeTypeQuestion,
				Text: "Douleur aiguë ?",
				Answers: []model.Answer{
					{Text: "Oui", Next: intPtr(2)},
					{Text: "Non", Next: intPtr(3)},
				},
			},
			{
				ID:              2,
				Type:            model.NodeTypeResult,
				Title:           "Urgence",
				Severity:        model.SeverityDanger,
				Recommendations: []string{"Consulter"},
			},
			{
				ID:              3,
				Type:            model.NodeTypeResult,
				Title:           "Bénin",
				Severity:        model.SeveritySuccess,
				Recommendations: []string{"Repos"},
			},
		},
	}
}

type fakeRecorder struct {
	calls    int
	lastSeen *model.DiagnosticSession
	nextID   uint
	err      error
}

func (f *fakeRecorder) Record(_ context.Context, s *model.DiagnosticSession) (uint, error) {
	f.calls++
	f.lastSeen = s
	if f.err != nil {
		return 0, f.err
	}
	return f.nextID, nil
}

func TestNewWalkerStartsAtFirstNode(t *testing.T) {
	w, err := NewWalker(cervicaleTree())
	require.NoError(t, err)
	assert.Equal(t, 1, w.CurrentID())
	assert.Empty(t, w.Path())
}

func TestNewWalkerEmptyTree(t *testing.T) {
	_, err := NewWalker(&model.DecisionTree{ID: 9, Nodes: []model.Node{}})
	assert.ErrorIs(t, err, ErrEmptyTree)

	_, err = NewWalker(nil)
	assert.ErrorIs(t, err, ErrEmptyTree)
}

func TestAnswerPushesPath(t *testing.T) {
	w, err := NewWalker(cervicaleTree())
	require.NoError(t, err)

	require.NoError(t, w.Answer(intPtr(2)))
	assert.Equal(t, 2, w.CurrentID())
	assert.Equal(t, []int{1}, w.Path())
}

func TestAnswerNilNextIsNoOp(t *testing.T) {
	w, err := NewWalker(cervicaleTree())
	require.NoError(t, err)

	require.NoError(t, w.Answer(nil))
	assert.Equal(t, 1, w.CurrentID())
	assert.Empty(t, w.Path())
}

func TestAnswerOnResultNodeRejected(t *testing.T) {
	w, err := NewWalker(cervicaleTree())
	require.NoError(t, err)
	require.NoError(t, w.Answer(intPtr(2)))

	assert.ErrorIs(t, w.Answer(intPtr(3)), ErrNotAnswerable)
}

func TestBackRestoresPreviousNode(t *testing.T) {
	w, err := NewWalker(cervicaleTree())
	require.NoError(t, err)

	// 路径长度等于已作答次数，每次回退恰好减一并恢复上一个节点
	require.NoError(t, w.Answer(intPtr(2)))
	require.Len(t, w.Path(), 1)

	assert.True(t, w.Back())
	assert.Equal(t, 1, w.CurrentID())
	assert.Empty(t, w.Path())

	// 空路径上的回退是 no-op
	assert.False(t, w.Back())
	assert.Equal(t, 1, w.CurrentID())
}

func TestDanglingNodeSurfacesNotFound(t *testing.T) {
	w, err := NewWalker(cervicaleTree())
	require.NoError(t, err)

	// 编辑器允许指向不存在的节点，走查在渲染时报错而不是修复
	require.NoError(t, w.Answer(intPtr(99)))
	_, err = w.Current()
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestArriveRecordsExactlyOnce(t *testing.T) {
	w, err := NewWalker(cervicaleTree())
	require.NoError(t, err)
	require.NoError(t, w.Answer(intPtr(2)))

	rec := &fakeRecorder{nextID: 42}
	id, recorded, err := w.Arrive(context.Background(), 7, rec)
	require.NoError(t, err)
	assert.True(t, recorded)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, 1, rec.calls)

	// 同一走查内重复到达不再写入
	id, recorded, err = w.Arrive(context.Background(), 7, rec)
	require.NoError(t, err)
	assert.False(t, recorded)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, 1, rec.calls)

	// 持久化内容：路径含终点，结果字段为反范式化副本
	require.NotNil(t, rec.lastSeen)
	assert.Equal(t, []int{1, 2}, rec.lastSeen.PathIDs)
	assert.Equal(t, uint(7), rec.lastSeen.UserID)
	assert.Equal(t, "Cervicale", rec.lastSeen.TreeName)
	assert.Equal(t, "Urgence", rec.lastSeen.ResultTitle)
	assert.Equal(t, model.SeverityDanger, rec.lastSeen.ResultSeverity)
	assert.Equal(t, []string{"Consulter"}, rec.lastSeen.RecommendationList)
}

func TestArriveOnNonResultIsNoOp(t *testing.T) {
	w, err := NewWalker(cervicaleTree())
	require.NoError(t, err)

	rec := &fakeRecorder{nextID: 1}
	id, recorded, err := w.Arrive(context.Background(), 7, rec)
	require.NoError(t, err)
	assert.False(t, recorded)
	assert.Zero(t, id)
	assert.Zero(t, rec.calls)
}

func TestArriveFailureLeavesRetryPossible(t *testing.T) {
	w, err := NewWalker(cervicaleTree())
	require.NoError(t, err)
	require.NoError(t, w.Answer(intPtr(2)))

	rec := &fakeRecorder{err: errors.New("db down")}
	_, recorded, err := w.Arrive(context.Background(), 7, rec)
	assert.Error(t, err)
	assert.False(t, recorded)
	assert.False(t, w.Saved())

	// 存储恢复后，同一走查可以重试且仅写入一次
	rec.err = nil
	rec.nextID = 5
	id, recorded, err := w.Arrive(context.Background(), 7, rec)
	require.NoError(t, err)
	assert.True(t, recorded)
	assert.Equal(t, uint(5), id)
	assert.True(t, w.Saved())
}

func TestStateRoundTrip(t *testing.T) {
	tree := cervicaleTree()
	w, err := NewWalker(tree)
	require.NoError(t, err)
	require.NoError(t, w.Answer(intPtr(2)))

	rec := &fakeRecorder{nextID: 11}
	_, _, err = w.Arrive(context.Background(), 3, rec)
	require.NoError(t, err)

	st := w.State()
	resumed, err := Resume(tree, st)
	require.NoError(t, err)
	assert.Equal(t, w.CurrentID(), resumed.CurrentID())
	assert.Equal(t, w.Path(), resumed.Path())
	assert.True(t, resumed.Saved())
	assert.Equal(t, uint(11), resumed.DiagnosticID())

	// 恢复到别的树上必须被拒绝
	other := cervicaleTree()
	other.ID = 2
	_, err = Resume(other, st)
	assert.ErrorIs(t, err, ErrTreeMismatch)
}

func TestPathLengthTracksSelections(t *testing.T) {
	// 走一条较长的链，验证 k 次作答后路径长度为 k
	tree := &model.DecisionTree{
		ID:   4,
		Name: "Chaîne",
		Nodes: []model.Node{
			{ID: 10, Type: model.NodeTypeQuestion, Answers: []model.Answer{{Text: "a", Next: intPtr(20)}}},
			{ID: 20, Type: model.NodeTypeTest, Answers: []model.Answer{{Text: "b", Next: intPtr(30)}}},
			{ID: 30, Type: model.NodeTypeQuestion, Answers: []model.Answer{{Text: "c", Next: intPtr(40)}}},
			{ID: 40, Type: model.NodeTypeResult, Title: "Fin", Severity: model.SeverityWarning},
		},
	}
	w, err := NewWalker(tree)
	require.NoError(t, err)

	steps := []int{20, 30, 40}
	for i, next := range steps {
		require.NoError(t, w.Answer(intPtr(next)))
		assert.Len(t, w.Path(), i+1)
	}
	assert.Equal(t, []int{10, 20, 30}, w.Path())

	for i := len(steps) - 1; i >= 0; i-- {
		assert.True(t, w.Back())
		assert.Len(t, w.Path(), i)
	}
	assert.Equal(t, 10, w.CurrentID())
}

package service

import (
	"context"
	"testing"

	"osteo-upgrade-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func diagnosticTree() *model.DecisionTree {
	tree := &model.DecisionTree{ID: 1, Name: "Cervicale", Nodes: validNodes()}
	if err := tree.EncodeNodes(); err != nil {
		panic(err)
	}
	return tree
}

func validInput() DiagnosticInput {
	return DiagnosticInput{
		TreeID:            1,
		TreeName:          "Cervicale",
		Path:              []int{1, 2},
		ResultTitle:       "Urgence",
		ResultSeverity:    model.SeverityDanger,
		ResultDescription: "Consultation immédiate recommandée.",
		Recommendations:   []string{"Consulter"},
	}
}

func TestDiagnosticCreate(t *testing.T) {
	repo := newFakeDiagnosticRepo()
	publisher := &fakePublisher{}
	svc := NewDiagnosticService(repo, newFakeTreeRepo(diagnosticTree()), publisher)

	id, err := svc.Create(context.Background(), 5, validInput())
	require.NoError(t, err)
	assert.Equal(t, uint(1), id)

	// 事件携带记录的关键字段
	require.Len(t, publisher.published, 1)
	event := publisher.published[0]
	assert.Equal(t, uint(1), event.DiagnosticID)
	assert.Equal(t, uint(5), event.UserID)
	assert.Equal(t, "Cervicale", event.TreeName)
	assert.Equal(t, model.SeverityDanger, event.Severity)
}

func TestDiagnosticCreateUnknownTree(t *testing.T) {
	svc := NewDiagnosticService(newFakeDiagnosticRepo(), newFakeTreeRepo(), &fakePublisher{})

	_, err := svc.Create(context.Background(), 5, validInput())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDiagnosticCreateRejectsInvalidPath(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DiagnosticInput)
	}{
		{"empty path", func(in *DiagnosticInput) { in.Path = []int{} }},
		{"wrong start node", func(in *DiagnosticInput) { in.Path = []int{2} }},
		{"no edge between hops", func(in *DiagnosticInput) { in.Path = []int{1, 99} }},
		{"terminal is not a result", func(in *DiagnosticInput) { in.Path = []int{1} }},
		{"unknown severity", func(in *DiagnosticInput) { in.ResultSeverity = "fatal" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeDiagnosticRepo()
			svc := NewDiagnosticService(repo, newFakeTreeRepo(diagnosticTree()), &fakePublisher{})

			input := validInput()
			tt.mutate(&input)

			_, err := svc.Create(context.Background(), 5, input)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Empty(t, repo.sessions)
		})
	}
}

func TestDiagnosticRecordSurvivesPublishFailure(t *testing.T) {
	// publisher 为 nil 时记录仍然写入
	repo := newFakeDiagnosticRepo()
	svc := NewDiagnosticService(repo, newFakeTreeRepo(diagnosticTree()), nil)

	id, err := svc.Create(context.Background(), 5, validInput())
	require.NoError(t, err)
	assert.Equal(t, uint(1), id)
	assert.Len(t, repo.sessions, 1)
}

func TestDiagnosticListForUser(t *testing.T) {
	repo := newFakeDiagnosticRepo()
	svc := NewDiagnosticService(repo, newFakeTreeRepo(diagnosticTree()), &fakePublisher{})

	_, err := svc.Create(context.Background(), 5, validInput())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 9, validInput())
	require.NoError(t, err)

	sessions, err := svc.ListForUser(5)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, uint(5), sessions[0].UserID)
}

func TestDiagnosticGetOwned(t *testing.T) {
	repo := newFakeDiagnosticRepo()
	svc := NewDiagnosticService(repo, newFakeTreeRepo(diagnosticTree()), &fakePublisher{})

	id, err := svc.Create(context.Background(), 5, validInput())
	require.NoError(t, err)

	session, err := svc.GetOwned(id, 5)
	require.NoError(t, err)
	assert.Equal(t, "Urgence", session.ResultTitle)

	// 他人的记录与不存在的记录不可区分
	_, err = svc.GetOwned(id, 9)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

package service

import (
	"testing"

	"osteo-upgrade-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validNodes() []model.Node {
	return []model.Node{
		{ID: 1, Type: model.NodeTypeQuestion, Text: "Douleur aiguë ?", Answers: []model.Answer{
			{Text: "Oui", Next: intPtr(2)},
			{Text: "Non", Next: intPtr(3)},
		}},
		{ID: 2, Type: model.NodeTypeResult, Title: "Urgence", Severity: model.SeverityDanger},
		{ID: 3, Type: model.NodeTypeResult, Title: "Bénin", Severity: model.SeveritySuccess},
	}
}

func TestValidateTreeNodes(t *testing.T) {
	assert.NoError(t, ValidateTreeNodes(validNodes()))
}

func TestValidateTreeNodesRejects(t *testing.T) {
	tests := []struct {
		name  string
		nodes []model.Node
	}{
		{"empty tree", nil},
		{"duplicate ids", []model.Node{
			{ID: 1, Type: model.NodeTypeResult, Severity: model.SeveritySuccess},
			{ID: 1, Type: model.NodeTypeResult, Severity: model.SeveritySuccess},
		}},
		{"unknown node type", []model.Node{
			{ID: 1, Type: "branch"},
		}},
		{"unknown severity", []model.Node{
			{ID: 1, Type: model.NodeTypeResult, Severity: "fatal"},
		}},
		{"answer without target", []model.Node{
			{ID: 1, Type: model.NodeTypeQuestion, Answers: []model.Answer{{Text: "Oui"}}},
		}},
		{"answer to missing node", []model.Node{
			{ID: 1, Type: model.NodeTypeQuestion, Answers: []model.Answer{{Text: "Oui", Next: intPtr(99)}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTreeNodes(tt.nodes)
			require.Error(t, err)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestTreeListLockedFlags(t *testing.T) {
	cervicale := &model.DecisionTree{ID: 1, Name: "Cervicale", Nodes: validNodes()}
	lombaire := &model.DecisionTree{ID: 2, Name: "Lombaire", Nodes: validNodes()}
	require.NoError(t, cervicale.EncodeNodes())
	require.NoError(t, lombaire.EncodeNodes())

	settingRepo := newFakeSettingRepo()
	settingRepo.settings[model.SettingFreemiumTreeID] = "1"
	svc := NewTreeService(newFakeTreeRepo(cervicale, lombaire), NewSettingService(settingRepo))

	items, err := svc.List(&model.User{ID: 5, Status: model.StatusFreemium})
	require.NoError(t, err)
	require.Len(t, items, 2)

	locked := map[uint]bool{}
	for _, item := range items {
		locked[item.ID] = item.Locked
	}
	assert.False(t, locked[1])
	assert.True(t, locked[2])

	// premium 用户全部解锁
	items, err = svc.List(&model.User{ID: 6, Status: model.StatusPremium})
	require.NoError(t, err)
	for _, item := range items {
		assert.False(t, item.Locked)
	}
}

func TestTreeGetLocked(t *testing.T) {
	lombaire := &model.DecisionTree{ID: 2, Name: "Lombaire", Nodes: validNodes()}
	require.NoError(t, lombaire.EncodeNodes())

	settingRepo := newFakeSettingRepo()
	settingRepo.settings[model.SettingFreemiumTreeID] = "1"
	svc := NewTreeService(newFakeTreeRepo(lombaire), NewSettingService(settingRepo))

	_, err := svc.Get(&model.User{ID: 5, Status: model.StatusFreemium}, 2)
	assert.ErrorIs(t, err, ErrTreeLocked)

	tree, err := svc.Get(&model.User{ID: 1, Status: model.StatusAdmin}, 2)
	require.NoError(t, err)
	assert.Equal(t, "Lombaire", tree.Name)
}

func TestTreeCreateDefaultsIcon(t *testing.T) {
	svc := NewTreeService(newFakeTreeRepo(), NewSettingService(newFakeSettingRepo()))

	tree, err := svc.Create("Épaule", "", validNodes(), 1)
	require.NoError(t, err)
	assert.Equal(t, "🦴", tree.Icon)
	assert.NotZero(t, tree.ID)
}

func TestTreeCreateRejectsInvalidNodes(t *testing.T) {
	svc := NewTreeService(newFakeTreeRepo(), NewSettingService(newFakeSettingRepo()))

	_, err := svc.Create("Épaule", "", []model.Node{{ID: 1, Type: "branch"}}, 1)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

package report

import (
	"testing"
	"time"

	"osteo-upgrade-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDiagnostic() *model.DiagnosticSession {
	return &model.DiagnosticSession{
		ID:                 42,
		UserID:             7,
		TreeID:             1,
		TreeName:           "Cervicale",
		PathIDs:            []int{1, 2},
		ResultTitle:        "Urgence",
		ResultSeverity:     model.SeverityDanger,
		ResultDescription:  "Signes neurologiques évocateurs d'une atteinte sévère.",
		RecommendationList: []string{"Consulter immédiatement", "Éviter toute manipulation"},
		CreatedAt:          time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
	}
}

func sampleUser() *model.User {
	return &model.User{ID: 7, Name: "Marie Dupont", Email: "marie@exemple.fr"}
}

func TestRenderProducesPDF(t *testing.T) {
	pdf, err := Render(sampleDiagnostic(), sampleUser())
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestRenderIsDeterministic(t *testing.T) {
	diagnostic := sampleDiagnostic()
	user := sampleUser()

	first, err := Render(diagnostic, user)
	require.NoError(t, err)
	second, err := Render(diagnostic, user)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderUnknownSeverity(t *testing.T) {
	diagnostic := sampleDiagnostic()
	diagnostic.ResultSeverity = "inconnu"
	diagnostic.RecommendationList = nil

	pdf, err := Render(diagnostic, sampleUser())
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "diagnostic-42.pdf", Filename(42))
}

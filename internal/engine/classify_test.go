package engine

import (
	"testing"

	"github.com/plumedoc/plume/internal/normalizer"
	"github.com/plumedoc/plume/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	norm := normalizer.New()

	cases := []struct {
		raw  string
		want domain.CommandKind
	}{
		{"bonjour", domain.CommandGreeting},
		{"Salut !", domain.CommandGreeting},
		{"aide", domain.CommandHelp},
		{"menu", domain.CommandHelp},
		{"retour", domain.CommandBack},
		{"précédent", domain.CommandBack},
		{"annuler", domain.CommandCancel},
		{"cancel", domain.CommandCancel},
		{"oui", domain.CommandAccept},
		{"d'accord", domain.CommandAccept},
		{"non", domain.CommandRefuse},
		{"continuer", domain.CommandContinue},
		{"stop", domain.CommandStop},
		{"au revoir", domain.CommandStop},
		{"Comment ça marche ?", domain.CommandQuestion},
		{"pourquoi ce modèle", domain.CommandQuestion},
		{"pouvez vous préciser", domain.CommandQuestion},
		{"un contrat", domain.CommandNone},
		{"1", domain.CommandNone},
		{"", domain.CommandNone},
	}
	for _, tc := range cases {
		normalized := norm.Normalize(tc.raw)
		assert.Equal(t, tc.want, classify(normalized, tc.raw), "input %q (normalized %q)", tc.raw, normalized)
	}
}

func TestLooksLongForm(t *testing.T) {
	assert.False(t, looksLongForm("1"))
	assert.False(t, looksLongForm("contrat de travail"))
	assert.True(t, looksLongForm("je cherche un document pour mon dossier"))
}

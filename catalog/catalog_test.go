package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripsAccents(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Feijão", "feijao"},
		{"  AÇÚCAR   Cristal ", "acucar cristal"},
		{"pão francês", "pao frances"},
		{"água sanitária", "agua sanitaria"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestPrepareDropsDuplicatesAndBlanks(t *testing.T) {
	got := Prepare([]string{"Café", "cafe", " ", "Leite", "café "})
	assert.Equal(t, []string{"cafe", "leite"}, got)
}

func TestTermsAreUniqueAndNormalized(t *testing.T) {
	terms := Terms()
	assert.GreaterOrEqual(t, len(terms), 800, "catalog covers every section")

	seen := map[string]bool{}
	for _, term := range terms {
		assert.False(t, seen[term], "duplicate term %q", term)
		seen[term] = true
		assert.Equal(t, Normalize(term), term)
	}
}

func TestTermsCoverEverySection(t *testing.T) {
	terms := map[string]bool{}
	for _, term := range Terms() {
		terms[term] = true
	}

	for _, want := range []string{
		"arroz tipo 2", "arroz agulhinha", "tomate cereja", "coxao mole", "queijo minas frescal",
		"pao de queijo", "agua tonica", "fralda geriatrica", "sabao para louca", "racao filhote",
		"pilha alcalina", "sacola retornavel",
	} {
		assert.True(t, terms[want], "missing %q", want)
	}
}

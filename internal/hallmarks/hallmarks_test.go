package hallmarks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElevenHallmarks(t *testing.T) {
	assert.Len(t, Names, 11)
	assert.Len(t, Labels, 11)
}

func TestNameLabelBijection(t *testing.T) {
	for i, name := range Names {
		label, ok := LabelForName(name)
		require.True(t, ok, name)
		assert.Equal(t, Labels[i], label)

		back, ok := NameForLabel(label)
		require.True(t, ok, label)
		assert.Equal(t, name, back)

		assert.Equal(t, strings.ReplaceAll(name, " ", "_"), label)
	}

	_, ok := LabelForName("Not a hallmark")
	assert.False(t, ok)
	_, ok = NameForLabel("Not_a_hallmark")
	assert.False(t, ok)
}

func TestDescriptionsCoverAllHallmarks(t *testing.T) {
	assert.Len(t, Descriptions, 11)
	for _, label := range Labels {
		assert.NotEmpty(t, Descriptions[label], label)
	}
	assert.Contains(t, Descriptions["Telomere_attrition"], "telomeres")
	assert.Contains(t, Descriptions["Chronic_inflammation"], "inflammaging")
}

func TestGeneSetsCoverAllHallmarks(t *testing.T) {
	sets := GeneSets()
	assert.Len(t, sets, 11)
	for _, name := range Names {
		assert.NotEmpty(t, sets[name], name)
	}
	assert.True(t, sets["Genomic instability"]["TP53"])
	assert.True(t, sets["Telomere attrition"]["TERT"])
}

func TestGeneSetsReturnsCopies(t *testing.T) {
	first := GeneSets()
	first["Genomic instability"]["FAKE_GENE"] = true

	second := GeneSets()
	assert.False(t, second["Genomic instability"]["FAKE_GENE"])
}

func TestLongevityGenes(t *testing.T) {
	set := LongevityGenes()
	assert.NotEmpty(t, set)
	assert.True(t, set["APOE"])
	assert.True(t, set["FOXO3"])
	assert.False(t, set["NOT_A_GENE"])
}

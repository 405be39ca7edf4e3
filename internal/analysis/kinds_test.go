package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicPricedKindsChargePerTopic(t *testing.T) {
	spec, ok := specFor(KindNumerology)
	require.True(t, ok)
	assert.Equal(t, 1, spec.Price(&Request{SelectedTopics: []string{"life_path"}}))
	assert.Equal(t, 3, spec.Price(&Request{SelectedTopics: []string{"life_path", "expression", "maturity"}}))
}

func TestFixedPricedKinds(t *testing.T) {
	cases := map[Kind]int{
		KindPalmistry: 5,
		KindCoffee:    3,
		KindDream:     2,
	}
	for kind, want := range cases {
		spec, ok := specFor(kind)
		require.True(t, ok)
		assert.Equal(t, want, spec.Price(&Request{}), "kind %s", kind)
	}
}

func TestEndpointNamesAreKindScoped(t *testing.T) {
	spec, _ := specFor(KindTarot)
	assert.Equal(t, "analysis.tarot", spec.Endpoint())
}

func TestAllKindsHaveValidatorsAndPrompts(t *testing.T) {
	seen := make(map[string]bool)
	for _, spec := range Kinds() {
		require.NotNil(t, spec.Validate, "kind %s", spec.Kind)
		require.NotNil(t, spec.Prompt, "kind %s", spec.Kind)
		require.NotEmpty(t, spec.Path, "kind %s", spec.Kind)
		assert.False(t, seen[spec.Path], "duplicate path %s", spec.Path)
		seen[spec.Path] = true
	}
}

func TestUnknownKindIsRejected(t *testing.T) {
	_, ok := specFor(Kind("horoscope"))
	assert.False(t, ok)
}

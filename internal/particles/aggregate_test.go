package particles

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sensioair/sensio-mcp/internal/domain"
)

func tree(t *testing.T, s string) domain.ClassTree {
	t.Helper()
	var ct domain.ClassTree
	require.NoError(t, json.Unmarshal([]byte(s), &ct))
	return ct
}

func TestAggregateFlattensPaths(t *testing.T) {
	acc := NewCounts()
	Aggregate(tree(t, `{"mold": {"aspergillus": 3, "penicillium": 2}, "pollen": 5}`), acc, "")

	require.Equal(t, 3, acc.Len())
	for path, want := range map[string]float64{
		"mold/aspergillus": 3,
		"mold/penicillium": 2,
		"pollen":           5,
	} {
		got, ok := acc.Get(path)
		require.True(t, ok, path)
		require.Equal(t, want, got, path)
	}

	require.Equal(t, []domain.ParticleClass{
		{Class: "pollen", Count: 5},
		{Class: "mold/aspergillus", Count: 3},
	}, TopK(acc, 2))
}

func TestAggregateSumsAcrossCalls(t *testing.T) {
	acc := NewCounts()
	Aggregate(tree(t, `{"mold": {"aspergillus": 3}}`), acc, "")
	Aggregate(tree(t, `{"mold": {"aspergillus": 4, "alternaria": 1}}`), acc, "")

	got, _ := acc.Get("mold/aspergillus")
	require.Equal(t, 7.0, got)
	got, _ = acc.Get("mold/alternaria")
	require.Equal(t, 1.0, got)
}

func TestAggregateMixedSiblingsAndDeepNesting(t *testing.T) {
	acc := NewCounts()
	Aggregate(tree(t, `{"a": 1, "b": {"c": {"d": {"e": 2}}, "f": 3}, "g": "n/a"}`), acc, "")

	got, _ := acc.Get("b/c/d/e")
	require.Equal(t, 2.0, got)
	got, _ = acc.Get("b/f")
	require.Equal(t, 3.0, got)
	_, ok := acc.Get("g")
	require.False(t, ok)
}

func TestAggregatePrefix(t *testing.T) {
	acc := NewCounts()
	Aggregate(tree(t, `{"x": 1}`), acc, "root")
	_, ok := acc.Get("root/x")
	require.True(t, ok)
}

func TestTopKTiesKeepFirstSeenOrder(t *testing.T) {
	acc := NewCounts()
	Aggregate(tree(t, `{"b": 2, "a": 2, "c": 5, "d": 2}`), acc, "")

	require.Equal(t, []domain.ParticleClass{
		{Class: "c", Count: 5},
		{Class: "b", Count: 2},
		{Class: "a", Count: 2},
		{Class: "d", Count: 2},
	}, TopK(acc, 20))
	require.Empty(t, TopK(acc, 0))
	require.Empty(t, TopK(NewCounts(), 5))
}

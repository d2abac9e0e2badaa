package corpus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/schemadapt/pkg/adapt"
	"github.com/matzehuels/schemadapt/pkg/correspondence"
	"github.com/matzehuels/schemadapt/pkg/cost"
)

func TestRank(t *testing.T) {
	target := series(t, 2)
	templates := []Template{
		{Name: "four", Graph: series(t, 4)},
		{Name: "exact", Graph: series(t, 2)},
		{Name: "three", Graph: series(t, 3)},
		{Name: "also-exact", Graph: series(t, 2)},
	}

	got, err := Rank(context.Background(), target, templates, cost.Default(), RankOptions{Workers: 2})
	require.NoError(t, err)

	var names []string
	for _, m := range got {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"also-exact", "exact", "three", "four"}, names)
	assert.Zero(t, got[0].Distance.Value)
	assert.Equal(t, 2, got[3].Distance.UnmatchedBoxes)
	assert.InDelta(t, 6.0, got[3].Distance.Value, 1e-9)
}

func TestRankTopK(t *testing.T) {
	templates := []Template{
		{Name: "a", Graph: series(t, 3)},
		{Name: "b", Graph: series(t, 1)},
		{Name: "c", Graph: series(t, 5)},
	}
	got, err := Rank(context.Background(), series(t, 1), templates, nil, RankOptions{
		TopK:   2,
		Policy: correspondence.MajorityVote,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Name)
	assert.Equal(t, "a", got[1].Name)
}

func TestRankEmptyCorpus(t *testing.T) {
	got, err := Rank(context.Background(), series(t, 1), nil, nil, RankOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRankErrors(t *testing.T) {
	_, err := Rank(context.Background(), nil, nil, nil, RankOptions{})
	assert.ErrorIs(t, err, adapt.ErrInvalidGraph)

	_, err = Rank(context.Background(), series(t, 1), []Template{{Name: "x", Graph: series(t, 1)}},
		&cost.Config{BaseOperationCost: -1}, RankOptions{})
	assert.ErrorIs(t, err, cost.ErrInvalidConfig)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Rank(ctx, series(t, 1), []Template{{Name: "x", Graph: series(t, 1)}}, nil, RankOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

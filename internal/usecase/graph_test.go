package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightsGraphLevels(t *testing.T) {
	levels, err := InsightsGraph().Levels()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{StageMarketData, StageSECFilings, StageSocialSentiment, StageMacro},
		{StageNews, StageCompanyEvent, StageStartupSignals},
		{StageNLPEvent},
	}, levels)
}

func TestGraphLevelsErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Graph
	}{
		{
			name: "cycle",
			build: func() *Graph {
				g := NewGraph()
				g.AddNode("a")
				g.AddNode("b")
				g.AddEdge("a", "b")
				g.AddEdge("b", "a")
				return g
			},
		},
		{
			name: "unknown target",
			build: func() *Graph {
				g := NewGraph()
				g.AddNode("a")
				g.AddEdge("a", "missing")
				return g
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build().Levels()
			assert.Error(t, err)
		})
	}
}

func TestGraphRunRespectsDependencies(t *testing.T) {
	var mu sync.Mutex
	finished := map[string]bool{}
	violations := []string{}

	deps := map[string][]string{
		StageNews:           {StageMarketData},
		StageNLPEvent:       {StageNews, StageSECFilings},
		StageStartupSignals: {StageSocialSentiment},
		StageCompanyEvent:   {StageMacro},
	}

	errs, err := InsightsGraph().Run(context.Background(), func(ctx context.Context, stage string) error {
		mu.Lock()
		defer mu.Unlock()
		for _, d := range deps[stage] {
			if !finished[d] {
				violations = append(violations, stage+" before "+d)
			}
		}
		finished[stage] = true
		return nil
	})

	require.NoError(t, err)
	assert.Nil(t, errs)
	assert.Empty(t, violations)
	assert.Len(t, finished, 8)
}

func TestGraphRunCollectsStageErrors(t *testing.T) {
	boom := errors.New("upstream down")
	ran := sync.Map{}

	errs, err := InsightsGraph().Run(context.Background(), func(ctx context.Context, stage string) error {
		ran.Store(stage, true)
		if stage == StageMarketData {
			return boom
		}
		return nil
	})

	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[StageMarketData], boom)
	_, ranNews := ran.Load(StageNews)
	assert.True(t, ranNews, "dependents still run after a failed stage")
}

func TestGraphRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	errs, err := InsightsGraph().Run(ctx, func(ctx context.Context, stage string) error { return nil })
	require.NoError(t, err)
	assert.Len(t, errs, 8)
}

package usecase

import (
	"context"
	"fmt"
	"sync"
)

// Stage names of the insights pipeline.
const (
	StageMarketData      = "market_data"
	StageNews            = "news"
	StageSECFilings      = "sec_filings"
	StageSocialSentiment = "social_sentiment"
	StageMacro           = "macro"
	StageCompanyEvent    = "company_event"
	StageStartupSignals  = "startup_signals"
	StageNLPEvent        = "nlp_event"
)

// Graph is a set of named stages with ordering constraints.
type Graph struct {
	nodes []string
	index map[string]int
	edges map[string][]string // from -> to
}

func NewGraph() *Graph {
	return &Graph{index: map[string]int{}, edges: map[string][]string{}}
}

// AddNode registers a stage. Registration order breaks ties inside a level.
func (g *Graph) AddNode(name string) {
	if _, ok := g.index[name]; ok {
		return
	}
	g.index[name] = len(g.nodes)
	g.nodes = append(g.nodes, name)
}

// AddEdge declares that to runs after from.
func (g *Graph) AddEdge(from, to string) {
	g.edges[from] = append(g.edges[from], to)
}

// Levels groups stages so that every stage appears after all of its dependencies.
func (g *Graph) Levels() ([][]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		indegree[n] = 0
	}
	for from, tos := range g.edges {
		if _, ok := g.index[from]; !ok {
			return nil, fmt.Errorf("edge from unknown stage %q", from)
		}
		for _, to := range tos {
			if _, ok := g.index[to]; !ok {
				return nil, fmt.Errorf("edge to unknown stage %q", to)
			}
			indegree[to]++
		}
	}

	var current []string
	for _, n := range g.nodes {
		if indegree[n] == 0 {
			current = append(current, n)
		}
	}

	var levels [][]string
	visited := 0
	for len(current) > 0 {
		levels = append(levels, current)
		visited += len(current)
		var next []string
		for _, n := range current {
			for _, to := range g.edges[n] {
				indegree[to]--
				if indegree[to] == 0 {
					next = append(next, to)
				}
			}
		}
		g.sortByRegistration(next)
		current = next
	}

	if visited != len(g.nodes) {
		return nil, fmt.Errorf("dependency cycle among stages")
	}
	return levels, nil
}

func (g *Graph) sortByRegistration(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && g.index[names[j]] < g.index[names[j-1]]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

// StageFunc runs one stage.
type StageFunc func(ctx context.Context, stage string) error

// Run executes the stages level by level. Stages inside a level run concurrently.
// A failing stage does not stop the run; its error is reported in the returned map,
// which is nil when every stage succeeded.
func (g *Graph) Run(ctx context.Context, fn StageFunc) (map[string]error, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}

	type item struct {
		name string
		err  error
	}
	errs := map[string]error{}
	for _, level := range levels {
		ch := make(chan item, len(level))
		var wg sync.WaitGroup
		for _, name := range level {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				if err := ctx.Err(); err != nil {
					ch <- item{name, err}
					return
				}
				ch <- item{name, fn(ctx, name)}
			}(name)
		}
		go func() { wg.Wait(); close(ch) }()

		for it := range ch {
			if it.err != nil {
				errs[it.name] = it.err
			}
		}
	}

	if len(errs) == 0 {
		return nil, nil
	}
	return errs, nil
}

// InsightsGraph declares the source stages and their ordering.
func InsightsGraph() *Graph {
	g := NewGraph()
	for _, n := range []string{
		StageMarketData,
		StageNews,
		StageSECFilings,
		StageSocialSentiment,
		StageMacro,
		StageCompanyEvent,
		StageStartupSignals,
		StageNLPEvent,
	} {
		g.AddNode(n)
	}
	g.AddEdge(StageMarketData, StageNews)
	g.AddEdge(StageNews, StageNLPEvent)
	g.AddEdge(StageSECFilings, StageNLPEvent)
	g.AddEdge(StageSocialSentiment, StageStartupSignals)
	g.AddEdge(StageMacro, StageCompanyEvent)
	return g
}

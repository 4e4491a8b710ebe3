// Package dag schedules a flat list of variable assignments into ordered
// execution levels, grouping independent pure expressions for parallel
// evaluation by an external evaluator.
package dag

import (
	"sort"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"

	"github.com/melix/astro4j-sub008/apperrors"
)

// DependencyInfo describes one assignment statement discovered by an
// external source analyzer.
type DependencyInfo struct {
	VariableName             string
	SectionName               string
	Assignment                string
	Dependencies              []string
	HasFunctionCall           bool
	HasStatefulFunction       bool
	HasNonConcurrentFunction  bool
	HasParallelFunctionArguments bool
}

// Level is one scheduled batch: a set of DependencyInfo whose expressions
// can either run in parallel (CanRunInParallel) or must run as a single
// sequential unit (a singleton level never has CanRunInParallel set).
type Level struct {
	Expressions      []DependencyInfo
	CanRunInParallel bool
}

// Schedule builds the dependency graph from infos and computes the ordered
// list of execution levels (spec §4.8).
func Schedule(infos []DependencyInfo) ([]Level, error) {
	byName := make(map[string]DependencyInfo, len(infos))
	duplicates := make(map[string]int, len(infos))
	for _, info := range infos {
		duplicates[info.VariableName]++
		if _, exists := byName[info.VariableName]; !exists {
			byName[info.VariableName] = info
		}
	}

	g := core.NewGraph(core.WithDirected(true))
	for name := range byName {
		if err := g.AddVertex(name); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryScheduling, "dag.schedule", err)
		}
	}

	indegree := make(map[string]int, len(byName))
	for name := range byName {
		indegree[name] = 0
	}
	for name, info := range byName {
		for _, dep := range info.Dependencies {
			if _, known := byName[dep]; !known {
				continue // dependency on an external/unknown name: ignored for scheduling
			}
			if _, err := g.AddEdge(dep, name, 0); err != nil {
				return nil, apperrors.Wrap(apperrors.CategoryScheduling, "dag.schedule", err)
			}
			indegree[name]++
		}
	}

	processed := make(map[string]bool, len(byName))
	var levels []Level

	for len(processed) < len(byName) {
		var ready []string
		for name := range byName {
			if !processed[name] && indegree[name] == 0 {
				ready = append(ready, name)
			}
		}
		if len(ready) == 0 {
			return nil, unresolvable(g, byName, processed, duplicates)
		}
		sort.Strings(ready) // deterministic iteration order

		var parallel []DependencyInfo
		var sequential []DependencyInfo
		for _, name := range ready {
			info := byName[name]
			if info.HasFunctionCall && !info.HasStatefulFunction && !info.HasNonConcurrentFunction {
				parallel = append(parallel, info)
			} else {
				sequential = append(sequential, info)
			}
		}
		if len(parallel) > 0 {
			levels = append(levels, Level{Expressions: parallel, CanRunInParallel: true})
		}
		for _, info := range sequential {
			levels = append(levels, Level{Expressions: []DependencyInfo{info}})
		}

		for _, name := range ready {
			processed[name] = true
			for succName, succInfo := range byName {
				for _, dep := range succInfo.Dependencies {
					if dep == name {
						indegree[succName]--
					}
				}
			}
		}
	}
	return levels, nil
}

// unresolvable distinguishes a true circular dependency from an unresolved
// duplicate-variable definition among the names still stuck at the point a
// Kahn pass makes no progress.
func unresolvable(g *core.Graph, byName map[string]DependencyInfo, processed map[string]bool, duplicates map[string]int) error {
	for name, count := range duplicates {
		if count > 1 && !processed[name] {
			return apperrors.New(apperrors.CategoryScheduling, "dag.schedule",
				apperrors.ErrDuplicateVariable)
		}
	}
	if hasCycle, _, err := dfs.DetectCycles(g); err == nil && hasCycle {
		return apperrors.New(apperrors.CategoryScheduling, "dag.schedule", apperrors.ErrCircularDependency)
	}
	return apperrors.New(apperrors.CategoryScheduling, "dag.schedule", apperrors.ErrCircularDependency)
}

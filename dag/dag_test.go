package dag_test

import (
	"testing"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/dag"
)

func TestScheduleOrdersIndependentNodesTogether(t *testing.T) {
	infos := []dag.DependencyInfo{
		{VariableName: "a", HasFunctionCall: true, Dependencies: nil},
		{VariableName: "b", HasFunctionCall: true, Dependencies: nil},
		{VariableName: "c", Dependencies: []string{"a", "b"}},
	}
	levels, err := dag.Schedule(infos)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("expected 2 levels (a,b then c), got %d", len(levels))
	}
	if len(levels[0].Expressions) != 2 {
		t.Fatalf("expected the first level to contain both independent nodes, got %d", len(levels[0].Expressions))
	}
}

func TestScheduleSeparatesStatefulNodesIntoSingletonLevels(t *testing.T) {
	infos := []dag.DependencyInfo{
		{VariableName: "a", HasFunctionCall: true},
		{VariableName: "b", HasFunctionCall: true, HasStatefulFunction: true},
	}
	levels, err := dag.Schedule(infos)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("expected a parallel level for 'a' and a singleton level for stateful 'b', got %d levels", len(levels))
	}
	foundParallel, foundSingleton := false, false
	for _, l := range levels {
		if l.CanRunInParallel {
			foundParallel = true
		} else {
			foundSingleton = true
		}
	}
	if !foundParallel || !foundSingleton {
		t.Fatalf("expected both a parallel and a singleton level")
	}
}

func TestScheduleDetectsCircularDependency(t *testing.T) {
	infos := []dag.DependencyInfo{
		{VariableName: "a", Dependencies: []string{"b"}},
		{VariableName: "b", Dependencies: []string{"a"}},
	}
	_, err := dag.Schedule(infos)
	if err == nil {
		t.Fatalf("expected an error for a circular dependency")
	}
	if !apperrors.IsCategory(err, apperrors.CategoryScheduling) {
		t.Fatalf("expected a scheduling-category error, got %v", err)
	}
}

func TestScheduleIgnoresUnknownDependencies(t *testing.T) {
	infos := []dag.DependencyInfo{
		{VariableName: "a", Dependencies: []string{"external_symbol"}},
	}
	levels, err := dag.Schedule(infos)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(levels) != 1 || len(levels[0].Expressions) != 1 {
		t.Fatalf("expected a single level containing 'a', got %+v", levels)
	}
}

func TestScheduleNonConcurrentFunctionIsSingleton(t *testing.T) {
	infos := []dag.DependencyInfo{
		{VariableName: "a", HasFunctionCall: true, HasNonConcurrentFunction: true},
	}
	levels, err := dag.Schedule(infos)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(levels) != 1 || levels[0].CanRunInParallel {
		t.Fatalf("expected a single non-parallel level, got %+v", levels)
	}
}

func TestScheduleEmptyInputReturnsNoLevels(t *testing.T) {
	levels, err := dag.Schedule(nil)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(levels) != 0 {
		t.Fatalf("expected no levels for empty input, got %d", len(levels))
	}
}

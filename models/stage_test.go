package models

import "testing"

func TestMergeStageReplacesByName(t *testing.T) {
	trail := []AnalysisStage{
		{Stage: StageDataCollection, Status: StatusComplete, Progress: 12},
		{Stage: StageProtocolExecution, Status: StatusInProgress, Progress: 18},
	}

	trail = MergeStage(trail, AnalysisStage{
		Stage:    StageProtocolExecution,
		Status:   StatusComplete,
		Progress: 25,
	})

	if len(trail) != 2 {
		t.Fatalf("len(trail) = %d, want 2", len(trail))
	}
	if trail[1].Status != StatusComplete || trail[1].Progress != 25 {
		t.Errorf("trail[1] = %+v, want complete at 25", trail[1])
	}
}

func TestMergeStageAppendsNewStage(t *testing.T) {
	var trail []AnalysisStage

	for _, name := range StageOrder {
		trail = MergeStage(trail, AnalysisStage{Stage: name, Status: StatusPending})
	}

	if len(trail) != len(StageOrder) {
		t.Fatalf("len(trail) = %d, want %d", len(trail), len(StageOrder))
	}
	for i, name := range StageOrder {
		if trail[i].Stage != name {
			t.Errorf("trail[%d].Stage = %q, want %q", i, trail[i].Stage, name)
		}
	}
}

func TestMergeStageKeepsFirstSeenOrder(t *testing.T) {
	trail := []AnalysisStage{
		{Stage: StageDataCollection, Status: StatusInProgress},
		{Stage: StageProtocolExecution, Status: StatusPending},
	}

	trail = MergeStage(trail, AnalysisStage{Stage: StageDataCollection, Status: StatusComplete})

	if trail[0].Stage != StageDataCollection {
		t.Errorf("trail[0].Stage = %q, want %q", trail[0].Stage, StageDataCollection)
	}
	if trail[0].Status != StatusComplete {
		t.Errorf("trail[0].Status = %q, want %q", trail[0].Status, StatusComplete)
	}
}

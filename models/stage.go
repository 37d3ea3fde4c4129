package models

// MergeStage appends update to the trail, replacing an earlier entry with
// the same stage name instead of duplicating it. The trail keeps first-seen
// order, so progressive updates stay in execution order.
func MergeStage(trail []AnalysisStage, update AnalysisStage) []AnalysisStage {
	for i := range trail {
		if trail[i].Stage == update.Stage {
			trail[i] = update
			return trail
		}
	}
	return append(trail, update)
}

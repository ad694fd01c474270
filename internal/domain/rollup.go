package domain

// RollupInto aggregates child state into the parent in place.
//
// Dates: over the children with a scheduled end date, the parent takes the
// minimum start and maximum end, and its weight is re-derived from the new
// pair. If no child is scheduled the parent's dates are left alone.
//
// Steps: each parent milestone is the AND over all children, scheduled or
// not. Progress is recomputed from the aggregated steps.
//
// Pure over its arguments; the store drives the upward cascade.
func RollupInto(parent *Task, children []*Task) {
	if len(children) == 0 {
		return
	}

	scheduled := false
	var minStart, maxEnd Date
	for _, c := range children {
		if c.End.IsZero() {
			continue
		}
		if !scheduled {
			minStart, maxEnd = c.Start, c.End
			scheduled = true
			continue
		}
		if c.Start.Before(minStart) {
			minStart = c.Start
		}
		if c.End.After(maxEnd) {
			maxEnd = c.End
		}
	}
	if scheduled {
		parent.Start = minStart
		parent.End = maxEnd
		parent.Weight = EndToWeight(parent.Start, parent.End)
	}

	for i := 0; i < NumSteps; i++ {
		all := true
		for _, c := range children {
			if !c.Steps[i] {
				all = false
				break
			}
		}
		parent.Steps[i] = all
	}
	parent.ComputeProgress()
}

// ReanchorStart applies the dependency rule: the dependent's start date
// snaps to the target's end date, and its weight is re-derived from the
// shifted pair. A target with no scheduled end leaves the dependent alone.
// This runs only when the edge is selected; later changes to the target do
// not re-trigger it.
func ReanchorStart(dependent, target *Task) {
	if target == nil || target.End.IsZero() {
		return
	}
	dependent.Start = target.End
	dependent.Weight = EndToWeight(dependent.Start, dependent.End)
}

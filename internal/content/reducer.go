package content

// Append is the reducer for append-only fields. Updates are appended to
// the base in input order; duplicates are kept since the model may
// legitimately produce near-duplicate content. The base slice is not
// mutated.
func Append[T any](base, updates []T) []T {
	if len(updates) == 0 {
		return base
	}
	out := make([]T, 0, len(base)+len(updates))
	out = append(out, base...)
	out = append(out, updates...)
	return out
}

// MergeTasks is the reducer for the task field. Ops are applied as a
// single left-to-right fold: a ScheduledTask appends, a DeleteTask
// removes every task accumulated so far whose ID matches. Deleting an
// ID that is not present is a no-op, not an error.
func MergeTasks(base []ScheduledTask, ops []TaskOp) []ScheduledTask {
	if len(ops) == 0 {
		return base
	}
	out := make([]ScheduledTask, len(base))
	copy(out, base)
	for _, op := range ops {
		switch v := op.(type) {
		case ScheduledTask:
			out = append(out, v)
		case DeleteTask:
			kept := out[:0]
			for _, task := range out {
				if task.ID != v.ID {
					kept = append(kept, task)
				}
			}
			out = kept
		}
	}
	return out
}

package tween

// Diff returns the ids of next that are not in prev (added) and the ids of
// prev that are not in next (removed). Both keep the input order and
// contain no duplicates.
func Diff(prev, next []string) (added, removed []string) {
	in := make(map[string]struct{}, len(prev))
	for _, id := range prev {
		in[id] = struct{}{}
	}
	out := make(map[string]struct{}, len(next))
	for _, id := range next {
		if _, dup := out[id]; dup {
			continue
		}
		out[id] = struct{}{}
		if _, ok := in[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range prev {
		if _, ok := out[id]; !ok {
			removed = append(removed, id)
			out[id] = struct{}{}
		}
	}
	return added, removed
}

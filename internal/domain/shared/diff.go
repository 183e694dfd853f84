package shared

// Dedup returns ids with duplicates removed, keeping first-seen order.
func Dedup[T comparable](ids []T) []T {
	seen := make(map[T]struct{}, len(ids))
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Diff computes the changes that turn the current set into the desired set:
// add = desired - current, remove = current - desired. Elements present in
// both are left out of both results. Duplicates are ignored.
func Diff[T comparable](current, desired []T) (add, remove []T) {
	cur := make(map[T]struct{}, len(current))
	for _, id := range current {
		cur[id] = struct{}{}
	}
	want := make(map[T]struct{}, len(desired))
	for _, id := range Dedup(desired) {
		want[id] = struct{}{}
		if _, ok := cur[id]; !ok {
			add = append(add, id)
		}
	}
	for _, id := range Dedup(current) {
		if _, ok := want[id]; !ok {
			remove = append(remove, id)
		}
	}
	return add, remove
}

package importer

// Dedupe keeps the first record seen for each key and preserves input order.
// dropped is the number of later duplicates discarded.
func Dedupe[T any](items []T, key func(T) string) (kept []T, dropped int) {
	seen := make(map[string]struct{}, len(items))
	kept = make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			dropped++
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, item)
	}
	return kept, dropped
}

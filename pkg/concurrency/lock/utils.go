package lock

// updateOrDelete stores newSlice under key, or drops the key when the slice is empty.
func updateOrDelete[K comparable, V any](m map[K][]V, key K, newSlice []V) {
	if len(newSlice) > 0 {
		m[key] = newSlice
	} else {
		delete(m, key)
	}
}

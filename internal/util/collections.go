package util

import "fmt"

// OneAttachment returns the single element from a map. It errors when the
// map is empty or has more than one element.
func OneAttachment[K comparable, T any](m map[K]T) (T, error) {
	var result T
	for _, v := range m {
		result = v
		if len(m) == 1 {
			return result, nil
		}
		return result, fmt.Errorf("multiple elements found")
	}
	var zero T
	return zero, fmt.Errorf("no element found")
}

// FindFirst returns the first element matching the predicate.
func FindFirst[T any](slice []T, predicate func(T) bool) (T, bool) {
	for _, v := range slice {
		if predicate(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

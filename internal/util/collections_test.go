package util_test

import (
	"testing"

	"github.com/mangabot/manga/internal/util"
)

func TestOneAttachment(t *testing.T) {
	tc := []struct {
		name     string
		input    map[string]string
		expected string
		err      bool
	}{
		{
			name:     "single element",
			input:    map[string]string{"key1": "value1"},
			expected: "value1",
		},
		{
			name:  "multiple elements",
			input: map[string]string{"key1": "value1", "key2": "value2"},
			err:   true,
		},
		{
			name:  "no elements",
			input: map[string]string{},
			err:   true,
		},
	}

	for _, test := range tc {
		t.Run(test.name, func(t *testing.T) {
			result, err := util.OneAttachment(test.input)
			if test.err {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if result != test.expected {
				t.Errorf("expected %v, got %v", test.expected, result)
			}
		})
	}
}

func TestFindFirst(t *testing.T) {
	got, found := util.FindFirst([]int{1, 2, 3, 4}, func(x int) bool { return x%2 == 0 })
	if !found || got != 2 {
		t.Errorf("FindFirst = %v, %v", got, found)
	}

	_, found = util.FindFirst([]int{1, 3}, func(x int) bool { return x%2 == 0 })
	if found {
		t.Error("FindFirst reported a match in an all-odd slice")
	}
}

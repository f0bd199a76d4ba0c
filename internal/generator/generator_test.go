package generator_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/mangabot/manga/internal/generator"
)

func TestUUIDV4GeneratorNext(t *testing.T) {
	var gen generator.Generator[string] = &generator.UUIDV4Generator{}

	seen := make(map[string]struct{})
	for range 256 {
		id, err := gen.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		parsed, err := uuid.Parse(id)
		if err != nil {
			t.Fatalf("generated ID %q is not a UUID: %v", id, err)
		}
		if parsed.Version() != 4 {
			t.Errorf("expected version 4, got %d for %q", parsed.Version(), id)
		}
		if parsed.Variant() != uuid.RFC4122 {
			t.Errorf("expected RFC 4122 variant, got %v for %q", parsed.Variant(), id)
		}

		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate ID: %s", id)
		}
		seen[id] = struct{}{}
	}
}

package tags

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

const fallbackSlug = "tag"

// Slugify derives the base slug of a tag name: lowercase, words joined by
// hyphens.
func Slugify(name string) string {
	s := slug.Make(name)
	if s == "" {
		return fallbackSlug
	}
	return s
}

// NextSlug returns base if it is free, otherwise base-N with the smallest
// N >= 2 that is not taken.
func NextSlug(base string, taken []string) string {
	used := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		used[s] = struct{}{}
	}

	if _, ok := used[base]; !ok {
		return base
	}

	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, ok := used[candidate]; !ok {
			return candidate
		}
	}
}

// HasSlugPrefix reports whether s is base itself or base followed by a
// numeric suffix.
func HasSlugPrefix(s, base string) bool {
	if s == base {
		return true
	}
	rest, ok := strings.CutPrefix(s, base+"-")
	if !ok || rest == "" {
		return false
	}
	_, err := strconv.Atoi(rest)
	return err == nil
}

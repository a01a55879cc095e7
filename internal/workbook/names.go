package workbook

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/project-fieldsheet/internal/sheet"
)

const invalidNameChars = `:\/?*[]`

// sanitizeName replaces characters Excel forbids in sheet names. Leading and
// trailing apostrophes are also rejected by Excel and get replaced too.
func sanitizeName(name string) string {
	if name == "" {
		return "Sheet"
	}
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidNameChars, r) {
			return '_'
		}
		return r
	}, name)
	if strings.HasPrefix(name, "'") {
		name = "_" + name[1:]
	}
	if strings.HasSuffix(name, "'") {
		name = name[:len(name)-1] + "_"
	}
	return name
}

// nameRegistry hands out sheet names that are unique within one workbook.
// Excel compares sheet names case-insensitively.
type nameRegistry struct {
	taken map[string]bool
}

func newNameRegistry() *nameRegistry {
	return &nameRegistry{taken: make(map[string]bool)}
}

// claim returns name, or name with a " (n)" suffix when it is already used.
// Suffixed names are cut so the result still fits sheet.MaxNameLength.
func (r *nameRegistry) claim(name string) string {
	candidate := name
	for n := 2; r.taken[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(name)
		if keep := sheet.MaxNameLength - len(suffix); len(base) > keep {
			base = base[:keep]
		}
		candidate = string(base) + suffix
	}
	r.taken[strings.ToLower(candidate)] = true
	return candidate
}

package domain

import (
	"strings"
	"unicode/utf8"
)

type Category struct {
	ID   int64
	Name string
}

const MaxCategoryNameLen = 120

// NormalizeCategoryName trims surrounding whitespace and checks the result.
// Comparison elsewhere stays case-sensitive.
func NormalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", BadRequest("category name is required")
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLen {
		return "", BadRequestf("category name exceeds %d characters", MaxCategoryNameLen)
	}
	return name, nil
}

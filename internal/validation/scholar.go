package validation

import (
	"fmt"
	"regexp"
)

// ScholarIDPattern - канонический ID OpenAlex: буква-префикс сущности и цифры
var ScholarIDPattern = regexp.MustCompile(`^[A-Za-z][0-9]{1,20}$`)

// ValidateScholarID проверяет канонический (без URI префикса) ID ученого
func ValidateScholarID(id string) error {
	if id == "" {
		return fmt.Errorf("scholar id cannot be empty")
	}

	if !ScholarIDPattern.MatchString(id) {
		return fmt.Errorf("scholar id %q is not a valid identifier", id)
	}

	return nil
}

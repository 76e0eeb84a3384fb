package lists

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/shared"
)

// NormalizeName trims and NFC-normalizes a list name, rejecting empty or overlong names.
func NormalizeName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return "", fmt.Errorf("%w: list name is required", shared.ErrValidation)
	}
	if n := utf8.RuneCountInString(name); n > models.MaxListNameLength {
		return "", fmt.Errorf("%w: list name must be at most %d characters, got %d",
			shared.ErrValidation, models.MaxListNameLength, n)
	}
	return name, nil
}

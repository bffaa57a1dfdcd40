package validator

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var serialRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{1,63}$`)

func ValidateRequired(value string) bool {
	return strings.TrimSpace(value) != ""
}

// ValidateSerial checks the serial number shape before the registry
// normalizes it. Uniqueness is enforced by storage, not here.
func ValidateSerial(serial string) bool {
	return serialRegex.MatchString(strings.TrimSpace(serial))
}

func ValidateUUID(value string) bool {
	if value == "" {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}

// ValidatePagination clamps page/size to sane values. Zero page means
// first page; size is capped so a single call can't dump a full history.
func ValidatePagination(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

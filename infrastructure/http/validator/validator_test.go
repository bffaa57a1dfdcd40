package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateSerial(t *testing.T) {
	assert.True(t, ValidateSerial("NB-2024-001"))
	assert.True(t, ValidateSerial("  abc123  "))
	assert.False(t, ValidateSerial("X"))
	assert.False(t, ValidateSerial(""))
	assert.False(t, ValidateSerial("has spaces inside"))
	assert.False(t, ValidateSerial("-starts-with-dash"))
}

func TestValidateUUID(t *testing.T) {
	assert.True(t, ValidateUUID(uuid.NewString()))
	assert.False(t, ValidateUUID("not-a-uuid"))
	assert.False(t, ValidateUUID(""))
}

func TestValidatePagination(t *testing.T) {
	page, size := ValidatePagination(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	page, size = ValidatePagination(3, 50)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, size)

	_, size = ValidatePagination(1, 1000)
	assert.Equal(t, 100, size)
}

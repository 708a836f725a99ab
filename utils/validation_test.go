package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	valid := []string{
		"+14155552671",
		"+919876543210",
		"14155552671",
		"+1 415 555 2671",
		"+1-415-555-2671",
		"+1 (415) 555-2671",
	}
	for _, phone := range valid {
		assert.True(t, ValidatePhone(phone), "expected %q to be valid", phone)
	}

	invalid := []string{
		"",
		"abc",
		"+0123456",
		"++14155552671",
		"+1415555267112345678",
	}
	for _, phone := range invalid {
		assert.False(t, ValidatePhone(phone), "expected %q to be invalid", phone)
	}
}

func TestValidateVisitStatus(t *testing.T) {
	assert.True(t, ValidateVisitStatus("COMPLETED"))
	assert.True(t, ValidateVisitStatus("MISSED"))
	assert.True(t, ValidateVisitStatus("CANCELLED"))

	assert.False(t, ValidateVisitStatus("SCHEDULED"), "manual actions cannot set SCHEDULED")
	assert.False(t, ValidateVisitStatus("completed"))
	assert.False(t, ValidateVisitStatus(""))
	assert.False(t, ValidateVisitStatus("DONE"))
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type seatPayload struct {
	EventID int64    `validate:"required,gt=0"`
	Seats   []string `validate:"required,min=1,dive,seatlabel"`
}

func TestIsValidSeatLabel(t *testing.T) {
	for _, ok := range []string{"A1", "b-12", "VIP3", "1234567890"} {
		assert.True(t, IsValidSeatLabel(ok), ok)
	}
	for _, bad := range []string{"", "A 1", "A1;DROP", "12345678901", "Ä1"} {
		assert.False(t, IsValidSeatLabel(bad), bad)
	}
}

func TestValidateStruct(t *testing.T) {
	assert.Nil(t, ValidateStruct(seatPayload{EventID: 1, Seats: []string{"A1"}}))

	errs := ValidateStruct(seatPayload{EventID: 0, Seats: []string{"A 1"}})
	assert.Equal(t, "This field is required", errs["EventID"])
	assert.Contains(t, errs["Seats[0]"], "Seat labels")
}

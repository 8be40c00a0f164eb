package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatListUnmarshal(t *testing.T) {
	cases := []struct {
		name string
		body string
		want SeatList
	}{
		{"array", `{"seats":["A1"," A2 "]}`, SeatList{"A1", "A2"}},
		{"comma string", `{"seats":"A1, A2,,B3"}`, SeatList{"A1", "A2", "B3"}},
		{"single string", `{"seats":"C7"}`, SeatList{"C7"}},
		{"null", `{"seats":null}`, nil},
		{"missing", `{}`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req CreateBookingRequest
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
			assert.Equal(t, tc.want, req.Seats)
		})
	}
}

func TestSeatListRejectsOtherTypes(t *testing.T) {
	var req CreateBookingRequest
	assert.Error(t, json.Unmarshal([]byte(`{"seats":42}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"seats":[1,2]}`), &req))
}

func TestPaginatedRequestBounds(t *testing.T) {
	p := PaginatedRequest{Page: 3, PerPage: 500}
	assert.Equal(t, 100, p.Limit())
	assert.Equal(t, 200, p.Offset())

	p = PaginatedRequest{Page: 0, PerPage: 0}
	assert.Equal(t, 10, p.Limit())
	assert.Equal(t, 0, p.Offset())
}

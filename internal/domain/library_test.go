package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLibrary_Contains(t *testing.T) {
	lib := &Library{UserID: "alice", Name: "favs", BookIDs: []int64{7, 9}}

	assert.True(t, lib.Contains(7))
	assert.True(t, lib.Contains(9))
	assert.False(t, lib.Contains(3))
}

func TestDedupeBookIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []int64
		want []int64
	}{
		{"nil", nil, []int64{}},
		{"already clean", []int64{1, 2, 3}, []int64{1, 2, 3}},
		{"duplicates", []int64{1, 2, 1, 3, 2}, []int64{1, 2, 3}},
		{"non-positive dropped", []int64{0, -1, 5}, []int64{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeBookIDs(tt.ids))
		})
	}
}

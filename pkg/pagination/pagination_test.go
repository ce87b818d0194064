package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		perPage  int
		expected int
	}{
		{name: "empty listing is one page", total: 0, perPage: 9, expected: 1},
		{name: "exact multiple", total: 18, perPage: 9, expected: 2},
		{name: "remainder adds a page", total: 19, perPage: 9, expected: 3},
		{name: "fewer than a page", total: 3, perPage: 9, expected: 1},
		{name: "zero per page", total: 10, perPage: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TotalPages(tt.total, tt.perPage))
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(0, 5))
	assert.Equal(t, 1, Clamp(-3, 5))
	assert.Equal(t, 3, Clamp(3, 5))
	assert.Equal(t, 5, Clamp(9, 5))
	assert.Equal(t, 1, Clamp(4, 0))
}

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, Window(items, 1, 2))
	assert.Equal(t, []int{3, 4}, Window(items, 2, 2))
	assert.Equal(t, []int{5}, Window(items, 3, 2))
}

func TestWindow_OutOfRange(t *testing.T) {
	items := []int{1, 2, 3}

	assert.Empty(t, Window(items, 4, 2))
	assert.NotNil(t, Window(items, 4, 2))
	assert.Empty(t, Window(items, 0, 2))
	assert.Empty(t, Window(items, 1, 0))
	assert.Empty(t, Window([]int(nil), 1, 9))
}

func TestWindow_CoversAllItems(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	var joined []int
	for p := 1; p <= TotalPages(len(items), 9); p++ {
		joined = append(joined, Window(items, p, 9)...)
	}
	assert.Equal(t, items, joined)
}

func TestNewResult(t *testing.T) {
	r := NewResult([]string{"a", "b"}, 5, 2, 2)

	assert.Equal(t, 3, r.TotalPages)
	assert.True(t, r.HasNext)
	assert.True(t, r.HasPrev)
	assert.Equal(t, 5, r.TotalCount)
}

func TestNewResult_NilDataBecomesEmpty(t *testing.T) {
	r := NewResult[string](nil, 0, 1, 9)

	assert.NotNil(t, r.Data)
	assert.Equal(t, 1, r.TotalPages)
	assert.False(t, r.HasNext)
	assert.False(t, r.HasPrev)
}

func TestPages(t *testing.T) {
	assert.Equal(t, []int{1}, Pages(1, 1, 1))
	assert.Equal(t, []int{1, 2, 3}, Pages(2, 3, 1))
	assert.Equal(t, []int{1, 0, 4, 5, 6, 0, 10}, Pages(5, 10, 1))
	assert.Equal(t, []int{1, 2, 0, 10}, Pages(1, 10, 1))
}

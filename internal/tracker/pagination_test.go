package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageSplitsFortySevenRecords(t *testing.T) {
	records := roster(47, "2024-06-01")

	first, total := Page(records, 20, 1)
	assert.Equal(t, 3, total)
	assert.Len(t, first, 20)
	assert.Equal(t, "u1", first[0].ID)

	second, _ := Page(records, 20, 2)
	assert.Len(t, second, 20)
	assert.Equal(t, "u21", second[0].ID)

	third, _ := Page(records, 20, 3)
	assert.Len(t, third, 7)
	assert.Equal(t, "u47", third[6].ID)
}

func TestPageDoesNotClamp(t *testing.T) {
	records := roster(5, "2024-06-01")

	page, total := Page(records, 20, 2)
	assert.Equal(t, 1, total)
	assert.Empty(t, page)

	page, _ = Page(records, 20, 0)
	assert.Empty(t, page)
}

func TestTotalPagesMinimumIsOne(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 1, TotalPages(3, 0))
}

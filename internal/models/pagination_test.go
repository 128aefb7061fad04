package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePage(t *testing.T) {
	p, s := NormalizePage(0, 0)
	assert.Equal(t, 1, p)
	assert.Equal(t, DefaultPageSize, s)

	p, s = NormalizePage(3, 1000)
	assert.Equal(t, 3, p)
	assert.Equal(t, MaxPageSize, s)

	assert.Equal(t, 40, Offset(3, 20))
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 31, "-created_at")
	assert.Equal(t, "created_at", p.Sort)
	assert.Equal(t, -1, p.Direction)
	assert.Equal(t, 31, p.Count)

	p = NewPagination(1, 10, 0, "severity")
	assert.Equal(t, "severity", p.Sort)
	assert.Equal(t, 1, p.Direction)
}

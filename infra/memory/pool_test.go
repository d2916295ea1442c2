package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	n    int
	tags []string
}

func TestPoolResetsOnPut(t *testing.T) {
	p := NewPool(func() *item { return &item{} }, func(v *item) { *v = item{} })

	v := p.Get()
	v.n = 7
	v.tags = append(v.tags, "x")
	assert.Equal(t, int64(1), p.Outstanding())

	p.Put(v)
	assert.Equal(t, 0, v.n)
	assert.Nil(t, v.tags)
	assert.Equal(t, int64(0), p.Outstanding())
}

func TestPoolPutNil(t *testing.T) {
	p := NewPool(func() *item { return &item{} }, nil)
	p.Put(nil)
	assert.Equal(t, int64(0), p.Outstanding())
	assert.NotNil(t, p.Get())
}

package collection

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// growing simulates a foreign array whose length changes behind the view.
type growing struct {
	data    []int32
	queries int
}

func (g *growing) Len() int {
	g.queries++
	return len(g.data)
}

func (g *growing) At(i int) int32 { return g.data[i] }
func (g *growing) Add(v int32)    { g.data = append(g.data, v) }

func (g *growing) Data() *int32 {
	if len(g.data) == 0 {
		return nil
	}
	return &g.data[0]
}

func TestView_GetBounds(t *testing.T) {
	v := Over[int32](&growing{data: []int32{10, 20, 30}})

	got, ok := v.Get(0)
	require.True(t, ok)
	assert.Equal(t, int32(10), got)

	got, ok = v.Get(2)
	require.True(t, ok)
	assert.Equal(t, int32(30), got)

	for _, i := range []int{-1, 3, 100} {
		got, ok = v.Get(i)
		assert.False(t, ok, "index %d", i)
		assert.Zero(t, got)
	}
}

func TestView_LengthIsRequeried(t *testing.T) {
	src := &growing{data: []int32{1}}
	v := Over[int32](src)

	assert.Equal(t, 1, v.Len())
	src.Add(2)
	assert.Equal(t, 2, v.Len())

	_, ok := v.Get(1)
	assert.True(t, ok)
	assert.Greater(t, src.queries, 2)
}

func TestView_Values(t *testing.T) {
	v := Over[int32](&growing{data: []int32{1, 2, 3}})

	assert.Equal(t, []int32{1, 2, 3}, slices.Collect(v.Values()))
	// a second range re-derives from the collection
	assert.Equal(t, []int32{1, 2, 3}, slices.Collect(v.Values()))

	var seen []int
	for i, x := range v.All() {
		seen = append(seen, i)
		if x == 2 {
			break
		}
	}
	assert.Equal(t, []int{0, 1}, seen)
}

func TestIterator_Consumes(t *testing.T) {
	v := Over[int32](&growing{data: []int32{7, 8}})
	it := v.Iter()

	assert.Equal(t, 2, it.Remaining())
	x, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, int32(7), x)
	x, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, int32(8), x)
	_, ok = it.Next()
	assert.False(t, ok)
	_, ok = it.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, it.Remaining())

	again := v.Iter()
	x, ok = again.Next()
	require.True(t, ok)
	assert.Equal(t, int32(7), x)
}

func TestIterator_SeesAppends(t *testing.T) {
	src := &growing{data: []int32{1}}
	it := Over[int32](src).Iter()

	_, _ = it.Next()
	src.Add(2)
	x, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, int32(2), x)
}

func TestBorrowAndCollect(t *testing.T) {
	for _, n := range []int{0, 1, 64} {
		src := &growing{}
		want := make([]int32, n)
		for i := range want {
			want[i] = int32(i * 3)
		}
		AddAll[int32](src, slices.Values(want))

		borrowed := Borrow[int32](src)
		collected := Over[int32](src).Collect()
		assert.Len(t, collected, n)
		if n == 0 {
			assert.Nil(t, borrowed)
			continue
		}
		assert.Equal(t, want, borrowed)
		assert.Equal(t, want, collected)
	}
}

func TestZeroView(t *testing.T) {
	var v View[string]
	assert.Equal(t, 0, v.Len())
	_, ok := v.Get(0)
	assert.False(t, ok)
	assert.Empty(t, v.Collect())
	_, ok = v.Iter().Next()
	assert.False(t, ok)
}

func TestSliceSource(t *testing.T) {
	v := Over[string](SliceSource[string]{"Microphone", "Headset"})
	assert.Equal(t, []string{"Microphone", "Headset"}, v.Collect())
}

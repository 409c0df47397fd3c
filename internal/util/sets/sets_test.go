package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := New("classA.rst", "structB.rst")
	s.Add("namespaceC.rst", "classA.rst")

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Has("structB.rst"))
	assert.False(t, s.Has("classZ.rst"))

	c := s.Clone()
	c.Delete("classA.rst")
	assert.True(t, s.Has("classA.rst"))
	assert.False(t, c.Has("classA.rst"))

	assert.Equal(t, []string{"classA.rst", "namespaceC.rst", "structB.rst"}, Sorted(s))
	assert.Empty(t, Sorted(New[string]()))
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPath_String(t *testing.T) {
	assert.Equal(t, "A → B → C", Path{"A", "B", "C"}.String())
	assert.Equal(t, "A", Path{"A"}.String())
}

func TestPath_Pairs(t *testing.T) {
	assert.Nil(t, Path{"A"}.Pairs())
	assert.Equal(t, [][2]string{{"A", "B"}, {"B", "C"}}, Path{"A", "B", "C"}.Pairs())
}

func TestPath_Valid(t *testing.T) {
	assert.True(t, Path{"A"}.Valid())
	assert.True(t, Path{"A", "B", "A"}.Valid())
	assert.False(t, Path{}.Valid())
	assert.False(t, Path{"A", "A"}.Valid())
}

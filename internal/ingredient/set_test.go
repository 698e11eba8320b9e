package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "simple list",
			text:     "tomato, cheese, eggs",
			expected: []string{"tomato", "cheese", "eggs"},
		},
		{
			name:     "trims and drops empty segments",
			text:     " tomato ,, ,cheese,",
			expected: []string{"tomato", "cheese"},
		},
		{
			name:     "exact duplicates removed, first kept",
			text:     "eggs, milk, eggs , Eggs",
			expected: []string{"eggs", "milk", "Eggs"},
		},
		{
			name:     "empty",
			text:     "",
			expected: []string{},
		},
		{
			name:     "whitespace only",
			text:     "  ,  ",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseList(tt.text))
		})
	}
}

func TestSetAddOne(t *testing.T) {
	s := NewSet()

	assert.True(t, s.AddOne("tomato"))
	assert.False(t, s.AddOne("tomato"))
	assert.False(t, s.AddOne("  tomato  "))
	assert.True(t, s.AddOne("Tomato"))
	assert.False(t, s.AddOne(""))
	assert.False(t, s.AddOne("   "))

	assert.Equal(t, []string{"tomato", "Tomato"}, s.Snapshot())
}

func TestSetMergeAcrossImages(t *testing.T) {
	s := NewSet()
	s.Add("tomato", "Cheese", " eggs ")
	s.Add("eggs", "milk")

	assert.Equal(t, []string{"tomato", "Cheese", "eggs", "milk"}, s.Snapshot())
	assert.Equal(t, 4, s.Len())
}

func TestSetAddTextConvergesWithExtraction(t *testing.T) {
	manual := NewSet()
	added := manual.AddText(" tomato, ,cheese , tomato")
	assert.Equal(t, []string{"tomato", "cheese"}, added)

	extracted := NewSet()
	extracted.Add(ParseList(" tomato, ,cheese , tomato")...)

	assert.Equal(t, extracted.Snapshot(), manual.Snapshot())

	// Already-present names are not reported again.
	assert.Equal(t, []string{"basil"}, manual.AddText("cheese, basil"))
}

func TestSetRemove(t *testing.T) {
	s := NewSet()
	s.Add("tomato", "cheese", "eggs")

	s.Remove("basil")
	assert.Equal(t, 3, s.Len())

	s.Remove("cheese")
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Contains("cheese"))
	assert.Equal(t, []string{"tomato", "eggs"}, s.Snapshot())

	// Removed names can be added back.
	assert.True(t, s.AddOne("cheese"))
	assert.Equal(t, []string{"tomato", "eggs", "cheese"}, s.Snapshot())
}

func TestSetSnapshotIsACopy(t *testing.T) {
	s := NewSet()
	s.Add("tomato")

	snap := s.Snapshot()
	snap[0] = "changed"

	assert.Equal(t, []string{"tomato"}, s.Snapshot())
}

package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nothing", input: nil, expected: nil},
		{name: "blank", input: []string{" , ,"}, expected: nil},
		{name: "trims parts", input: []string{" a:9092 , b:9092"}, expected: []string{"a:9092", "b:9092"}},
		{name: "drops duplicates across values", input: []string{"pending,accepted", "pending"}, expected: []string{"pending", "accepted"}},
		{name: "keeps case", input: []string{"A,a"}, expected: []string{"A", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input...))
		})
	}
}

func TestSplitListLower(t *testing.T) {
	assert.Equal(t, []string{"pending", "accepted"}, SplitListLower("Pending,ACCEPTED", "pending"))
}

package probdoc_test

import (
	"testing"

	"github.com/fwojciec/probdoc"
	"github.com/stretchr/testify/assert"
)

func TestCleanPageTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		site  string
		want  string
	}{
		{"dash suffix", "Python Program to Add Two Numbers - Example", "Example", "Python Program to Add Two Numbers"},
		{"pipe suffix", "Sum of Digits | Example", "Example", "Sum of Digits"},
		{"no site name", "Sum of Digits - Example", "", "Sum of Digits - Example"},
		{"title is site name", " - Example", "Example", "- Example"},
		{"unrelated suffix", "Binary Search - Tutorial", "Example", "Binary Search - Tutorial"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, probdoc.CleanPageTitle(tt.title, tt.site))
		})
	}
}

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTerm(t *testing.T) {
	tests := []struct {
		in      string
		want    Term
		wantErr bool
	}{
		{in: "Fall 2025", want: Term{Year: "2025", Semester: Fall}},
		{in: "2025-sp", want: Term{Year: "2025", Semester: Spring}},
		{in: "spring/2026", want: Term{Year: "2026", Semester: Spring}},
		{in: "  SUMMER 2024 ", want: Term{Year: "2024", Semester: Summer}},
		{in: "Autumn 2023", want: Term{Year: "2023", Semester: Fall}},
		{in: "2025", wantErr: true},
		{in: "Fall", wantErr: true},
		{in: "Fall 2025 2026", wantErr: true},
		{in: "Fall Spring 2025", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTerm(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTermString(t *testing.T) {
	assert.Equal(t, "2025-fall", Term{Year: "2025", Semester: Fall}.String())
}

func TestValidSemester(t *testing.T) {
	assert.True(t, ValidSemester("spring"))
	assert.False(t, ValidSemester("winter"))
	assert.False(t, ValidSemester("Fall"))
}

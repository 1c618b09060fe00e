package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/transcriptledger/internal/app/models"
	"github.com/yigit/transcriptledger/internal/ledger"
)

func TestGradePoints(t *testing.T) {
	scale := map[string]uint64{
		"A+": 400, "A": 400, "A-": 370,
		"B+": 330, "B": 300, "B-": 270,
		"C+": 230, "C": 200, "C-": 170,
		"D+": 130, "D": 100, "D-": 70,
		"F": 0,
	}
	for grade, want := range scale {
		got, err := ledger.GradePoints(grade)
		require.NoError(t, err, grade)
		assert.Equal(t, want, got, grade)
	}

	got, err := ledger.GradePoints(" b+ ")
	require.NoError(t, err)
	assert.Equal(t, uint64(330), got)

	for _, bad := range []string{"", "E", "A++", "4.0", "pass"} {
		_, err := ledger.GradePoints(bad)
		assert.ErrorIs(t, err, ledger.ErrInvalidGrade, bad)
	}
}

func TestComputeGPA(t *testing.T) {
	gpa, err := ledger.ComputeGPA(nil)
	require.NoError(t, err)
	assert.Zero(t, gpa)

	gpa, err = ledger.ComputeGPA([]models.Course{
		{CourseCode: "CS101", Credits: 3, Grade: "A"},
		{CourseCode: "MATH101", Credits: 3, Grade: "B"},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(350), gpa)

	_, err = ledger.ComputeGPA([]models.Course{{CourseCode: "X", Credits: 3, Grade: "Z"}})
	assert.ErrorIs(t, err, ledger.ErrInvalidGrade)

	_, err = ledger.ComputeGPA([]models.Course{{CourseCode: "X", Credits: 0, Grade: "A"}})
	assert.ErrorIs(t, err, ledger.ErrInvalidCredits)
}

func TestComputeGPARejectsOverflow(t *testing.T) {
	tests := []struct {
		name    string
		courses []models.Course
	}{
		{"product overflows", []models.Course{
			{CourseCode: "CS101", Credits: 1 << 62, Grade: "A"},
		}},
		{"weighted sum overflows", []models.Course{
			{CourseCode: "CS101", Credits: 1 << 55, Grade: "A"},
			{CourseCode: "CS102", Credits: 1 << 55, Grade: "A"},
			{CourseCode: "CS103", Credits: 1 << 55, Grade: "A"},
		}},
		{"credit total overflows", []models.Course{
			{CourseCode: "CS101", Credits: 1 << 62, Grade: "F"},
			{CourseCode: "CS102", Credits: 1 << 62, Grade: "F"},
			{CourseCode: "CS103", Credits: 1 << 62, Grade: "F"},
			{CourseCode: "CS104", Credits: 1 << 62, Grade: "F"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gpa, err := ledger.ComputeGPA(tt.courses)
			assert.ErrorIs(t, err, ledger.ErrInvalidCredits)
			assert.Zero(t, gpa)
		})
	}
}

package ledger

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/yigit/transcriptledger/internal/app/models"
)

// MaxCredits is the largest credit weight a single course may carry
const MaxCredits = 100

// gradePoints maps each accepted letter grade to grade points times 100
var gradePoints = map[string]uint64{
	"A+": 400,
	"A":  400,
	"A-": 370,
	"B+": 330,
	"B":  300,
	"B-": 270,
	"C+": 230,
	"C":  200,
	"C-": 170,
	"D+": 130,
	"D":  100,
	"D-": 70,
	"F":  0,
}

// NormalizeGrade trims and upper-cases a letter grade
func NormalizeGrade(grade string) string {
	return strings.ToUpper(strings.TrimSpace(grade))
}

// GradePoints returns the grade points times 100 for a letter grade
func GradePoints(grade string) (uint64, error) {
	points, ok := gradePoints[NormalizeGrade(grade)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, grade)
	}
	return points, nil
}

// ComputeGPA returns the credit-weighted mean grade points times 100,
// truncated. An empty course list yields 0. A weighted sum that does not fit
// in 64 bits is an error rather than a wrapped value.
func ComputeGPA(courses []models.Course) (uint64, error) {
	var weighted, credits uint64
	for _, c := range courses {
		if c.Credits <= 0 {
			return 0, fmt.Errorf("%w: course %s has %d credits", ErrInvalidCredits, c.CourseCode, c.Credits)
		}
		points, err := GradePoints(c.Grade)
		if err != nil {
			return 0, err
		}
		hi, product := bits.Mul64(points, uint64(c.Credits))
		var carryW, carryC uint64
		weighted, carryW = bits.Add64(weighted, product, 0)
		credits, carryC = bits.Add64(credits, uint64(c.Credits), 0)
		if hi != 0 || carryW != 0 || carryC != 0 {
			return 0, fmt.Errorf("%w: credit-weighted total overflows at course %s", ErrInvalidCredits, c.CourseCode)
		}
	}
	if credits == 0 {
		return 0, nil
	}
	return weighted / credits, nil
}

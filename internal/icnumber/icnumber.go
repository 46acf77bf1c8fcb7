package icnumber

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// centuryPivot splits two-digit birth years: below it they belong to the 2000s,
// otherwise to the 1900s.
const centuryPivot = 30

const dateLayout = "2006-01-02"

// now is the reference clock for age hints; tests replace it.
var now = time.Now

var (
	nonDigits  = regexp.MustCompile(`\D`)
	leadingDOB = regexp.MustCompile(`^\d{6}`)
	wellFormed = regexp.MustCompile(`^(\d{12}|\d{6}-\d{2}-\d{4})$`)
)

// Result holds what can be derived from an identity number.
type Result struct {
	DateOfBirth string
	AgeHint     string
}

// Resolve derives the date of birth and age from the leading YYMMDD digits of s.
// An empty Result is returned when s does not start with six digits or the digits do
// not form a real calendar date.
func Resolve(s string) Result {
	digits := leadingDOB.FindString(strings.TrimSpace(s))
	if digits == "" {
		return Result{}
	}

	yy, _ := strconv.Atoi(digits[0:2])
	month, _ := strconv.Atoi(digits[2:4])
	day, _ := strconv.Atoi(digits[4:6])

	year := 1900 + yy
	if yy < centuryPivot {
		year = 2000 + yy
	}

	dob := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if dob.Year() != year || int(dob.Month()) != month || dob.Day() != day {
		return Result{}
	}

	return Result{
		DateOfBirth: dob.Format(dateLayout),
		AgeHint:     ageAt(dob, now()),
	}
}

func ageAt(dob, ref time.Time) string {
	ref = ref.UTC()
	if ref.Before(dob) {
		return ""
	}

	age := ref.Year() - dob.Year()
	if ref.Month() < dob.Month() || (ref.Month() == dob.Month() && ref.Day() < dob.Day()) {
		age--
	}
	return strconv.Itoa(age)
}

// Digits returns only the decimal digits of s.
func Digits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// Format renders an identity number in the 6-2-4 hyphenated shape. It reports false
// and returns the trimmed input when s does not hold exactly twelve digits.
func Format(s string) (string, bool) {
	digits := Digits(s)
	if len(digits) != 12 {
		return strings.TrimSpace(s), false
	}
	return fmt.Sprintf("%s-%s-%s", digits[0:6], digits[6:8], digits[8:12]), true
}

// WellFormed reports whether s is twelve digits, bare or hyphenated as 6-2-4.
func WellFormed(s string) bool {
	return wellFormed.MatchString(strings.TrimSpace(s))
}

// ValidDate reports whether s is a calendar-valid YYYY-MM-DD date.
func ValidDate(s string) bool {
	parsed, err := time.Parse(dateLayout, s)
	if err != nil {
		return false
	}
	return parsed.Format(dateLayout) == s
}

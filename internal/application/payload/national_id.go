package payload

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nordviken/onboarding-backend/internal/application/errs"
)

// PersonalNumber is a Swedish personnummer in canonical dashed ten-digit
// form (YYMMDD-NNNN), with the birth date resolved against the century pivot.
type PersonalNumber struct {
	Canonical string
	BirthDate time.Time
}

// OrgNumber is a Swedish organisationsnummer in canonical dashed form.
type OrgNumber struct {
	Canonical string
}

// ParsePersonalNumber accepts 10 or 12 digit input with an optional - or +
// separator. A + separator on ten-digit input marks a person over 100 years.
func ParsePersonalNumber(raw string) (PersonalNumber, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	over100 := strings.Contains(cleaned, "+")
	digits := digitsOnly(cleaned)

	var century int
	var short string
	switch len(digits) {
	case 12:
		c, err := strconv.Atoi(digits[:2])
		if err != nil {
			return PersonalNumber{}, errs.ValidationError{Field: "personalNumber", Msg: "not numeric"}
		}
		century = c
		short = digits[2:]
	case 10:
		yy, err := strconv.Atoi(digits[:2])
		if err != nil {
			return PersonalNumber{}, errs.ValidationError{Field: "personalNumber", Msg: "not numeric"}
		}
		century = 20
		if yy > time.Now().Year()%100 {
			century = 19
		}
		if over100 {
			century--
		}
		short = digits
	default:
		return PersonalNumber{}, errs.ValidationError{Field: "personalNumber", Msg: "must contain 10 or 12 digits"}
	}

	birthDate, err := time.Parse("20060102", fmt.Sprintf("%02d%s", century, short[:6]))
	if err != nil {
		return PersonalNumber{}, errs.ValidationError{Field: "personalNumber", Msg: "not a valid date"}
	}
	return PersonalNumber{
		Canonical: short[:6] + "-" + short[6:],
		BirthDate: birthDate,
	}, nil
}

// ParseOrgNumber accepts 10 digit input, optionally prefixed with 16 as in
// the twelve-digit form. The month field of an org number is always >= 20,
// which is what distinguishes it from a personnummer.
func ParseOrgNumber(raw string) (OrgNumber, error) {
	digits := digitsOnly(strings.TrimSpace(raw))
	if len(digits) == 12 {
		if !strings.HasPrefix(digits, "16") {
			return OrgNumber{}, errs.ValidationError{Field: "orgNumber", Msg: "twelve-digit form must start with 16"}
		}
		digits = digits[2:]
	}
	if len(digits) != 10 {
		return OrgNumber{}, errs.ValidationError{Field: "orgNumber", Msg: "must contain 10 digits"}
	}
	month, err := strconv.Atoi(digits[2:4])
	if err != nil || month < 20 {
		return OrgNumber{}, errs.ValidationError{Field: "orgNumber", Msg: "middle pair must be 20 or above"}
	}
	return OrgNumber{Canonical: digits[:6] + "-" + digits[6:]}, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

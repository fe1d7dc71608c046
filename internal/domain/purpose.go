package domain

import "strings"

// VerifyPurpose scopes a verification code to the flow that requested it.
type VerifyPurpose string

const (
	PurposeRegister VerifyPurpose = "register"
	PurposeReset    VerifyPurpose = "reset"
)

func (p VerifyPurpose) Valid() bool {
	return p == PurposeRegister || p == PurposeReset
}

func ParseVerifyPurpose(s string) (VerifyPurpose, error) {
	p := VerifyPurpose(strings.TrimSpace(s))
	if !p.Valid() {
		return "", ErrInvalidPurpose(s)
	}
	return p, nil
}

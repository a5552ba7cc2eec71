package errors

import "errors"

var (
	ErrRuleNotFound = errors.New("recurring rule not found")

	ErrOverrideNotFound = errors.New("availability override not found")

	ErrInvalidID = errors.New("invalid availability ID format")
)

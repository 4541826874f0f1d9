package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidLanguage = errors.New("invalid language")
	ErrInvalidCategory = errors.New("invalid category")
	ErrUnknownView     = errors.New("unknown view")
	ErrNoSubscriber    = errors.New("no subscriber")
)

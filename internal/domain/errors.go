package domain

import "errors"

// BusinessError ошибка бизнес-логики, которая уже залогирована и показана пользователю
type BusinessError struct {
	Err error
}

func (e *BusinessError) Error() string {
	return e.Err.Error()
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func WrapBusinessError(err error) error {
	if err == nil {
		return nil
	}
	return &BusinessError{Err: err}
}

func IsBusinessError(err error) bool {
	var businessErr *BusinessError
	return errors.As(err, &businessErr)
}

var (
	ErrCheckinDisabled  = errors.New("checkin disabled")
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrPromptNotFound   = errors.New("prompt not found")
	ErrUnknownPlatform  = errors.New("unknown platform")
	ErrInvalidScope     = errors.New("invalid quota scope")
	ErrInvalidAmount    = errors.New("amount must be positive")
)

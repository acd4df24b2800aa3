package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// Check-in errors
	ErrWeekendNotAllowed = errors.New("check-in is not allowed on weekends")
	ErrOutsideWindow     = errors.New("check-in is only allowed during office hours")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateCheckIn  = errors.New("you have already checked in today")
	ErrLocationRequired  = errors.New("location is required for in-house check-in")
	ErrOutOfRange        = errors.New("you are not at the office location")

	// Check-out errors
	ErrAlreadyCheckedOut = errors.New("you have already checked out")

	// General errors
	ErrRecordNotFound     = errors.New("attendance record not found")
	ErrForbidden          = errors.New("you are not allowed to perform this action")
	ErrInvalidStatusValue = errors.New("invalid attendance status value")
)

// OutOfRangeError reports how far an in-house check-in was from the office.
type OutOfRangeError struct {
	DistanceMeters int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("You are not at the office location (%dm away). Please check in from the office.", e.DistanceMeters)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

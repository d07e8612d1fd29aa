package domain

import (
	"fmt"
	"time"
)

// ValidateDateRange checks that both bounds are canonical calendar dates
// and that start does not come after end.
func ValidateDateRange(start, end string) error {
	startT, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return fmt.Errorf("%w: start %q", ErrInvalidDateRange, start)
	}

	endT, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return fmt.Errorf("%w: end %q", ErrInvalidDateRange, end)
	}

	if startT.After(endT) {
		return fmt.Errorf("%w: start %s after end %s", ErrInvalidDateRange, start, end)
	}

	return nil
}

// ValidateYear bounds the observability stats year to plausible values.
func ValidateYear(year int) error {
	if year < 1900 || year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidDateRange, year)
	}
	return nil
}

package config

import (
	"fmt"
	"time"
)

// ValidatePositiveDuration validates that a duration is positive (greater than zero).
//
// This is commonly used for timeout and budget validation where a non-zero,
// positive value is required.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}

// ValidateDurationRange validates that a duration is within a specified range.
//
// The duration must be >= min and <= max (inclusive).
func ValidateDurationRange(d, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%v) cannot be greater than max (%v)", min, max)
	}

	if d < min {
		return fmt.Errorf("duration %v is below minimum %v", d, min)
	}

	if d > max {
		return fmt.Errorf("duration %v exceeds maximum %v", d, max)
	}

	return nil
}

// ValidateNonNegativeDuration validates that a duration is zero or positive.
// Zero is a meaningful value for optional delays (no per-host spacing).
func ValidateNonNegativeDuration(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("duration must not be negative, got %v", d)
	}
	return nil
}

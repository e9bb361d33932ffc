package models

import (
	"errors"
	"fmt"
)

// ConfigurationError means required credentials are missing.
type ConfigurationError struct {
	Platform Platform
	Missing  []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s service not properly configured: set %v first", e.Platform.Label(), e.Missing)
}

// RemoteCallError means the upstream API could not serve the request and no cache was usable.
// Blocked is set when the local call budget prevented the call altogether.
type RemoteCallError struct {
	Platform   Platform
	StatusCode int
	Blocked    bool
	Err        error
}

func (e *RemoteCallError) Error() string {
	switch {
	case e.Blocked:
		return fmt.Sprintf("%s call budget exhausted and no cached data available", e.Platform.Label())
	case e.StatusCode == 403:
		return fmt.Sprintf("%s API quota exceeded or invalid credentials", e.Platform.Label())
	case e.StatusCode == 400:
		return fmt.Sprintf("%s API rejected the request: check the configured identifiers", e.Platform.Label())
	case e.StatusCode != 0:
		return fmt.Sprintf("%s API returned status %d", e.Platform.Label(), e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s API call failed: %s", e.Platform.Label(), e.Err)
	default:
		return fmt.Sprintf("%s API call failed", e.Platform.Label())
	}
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

func IsRemoteCallError(err error) bool {
	var re *RemoteCallError
	return errors.As(err, &re)
}

package config

import "fmt"

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.KVMHost == "" {
		return fmt.Errorf("%w: kvm_host cannot be empty", ErrInvalidKVMHost)
	}

	if c.KVMPort < 1 || c.KVMPort > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidKVMPort, c.KVMPort)
	}

	if c.DialTimeoutSeconds < 1 {
		return fmt.Errorf("%w: dial_timeout_seconds must be positive, got %d", ErrInvalidTimeout, c.DialTimeoutSeconds)
	}

	if c.CallTimeoutSeconds < 1 {
		return fmt.Errorf("%w: call_timeout_seconds must be positive, got %d", ErrInvalidTimeout, c.CallTimeoutSeconds)
	}

	if c.OCRLanguage == "" {
		return fmt.Errorf("%w: ocr_language cannot be empty", ErrInvalidOCRLanguage)
	}

	// CaptureLogDir may be empty: that disables capture logging.

	return nil
}

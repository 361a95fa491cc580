package config

import "errors"

// ErrInvalidConfig indicates a configuration value failed validation
var ErrInvalidConfig = errors.New("invalid configuration")

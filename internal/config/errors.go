package config

import "errors"

// ErrConfigLoadFailed wraps every failure to read or validate a config file.
var ErrConfigLoadFailed = errors.New("failed to load configuration")

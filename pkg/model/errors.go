package model

import "github.com/m-mizutani/goerr/v2"

// Base errors for the assistant subsystem. Callers discriminate with
// errors.Is; layers add context with goerr.Wrap.
var (
	ErrNotFound        = goerr.New("not found")
	ErrInvalidArgument = goerr.New("invalid argument")
	ErrExternalService = goerr.New("external service error")
)

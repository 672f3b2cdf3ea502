package config

import "errors"

var (
	// ErrInvalidBackend indicates an unknown store backend.
	ErrInvalidBackend = errors.New("config: unknown store backend")

	// ErrMissingRedisAddr indicates a redis-backed store without an address.
	ErrMissingRedisAddr = errors.New("config: store.redis.addr is required")

	// ErrMissingAuthSecret indicates auth is enabled without a signing secret.
	ErrMissingAuthSecret = errors.New("config: auth.secret is required when auth is enabled")

	// ErrMissingListenAddr indicates listen.addr is empty.
	ErrMissingListenAddr = errors.New("config: listen.addr is required")

	// ErrNegativeValue indicates a size, count or duration below zero.
	ErrNegativeValue = errors.New("config: value must not be negative")
)

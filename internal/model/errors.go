package model

import "errors"

var (
	// ErrInvalidInput marks a malformed argument: a non-positive window or span,
	// an empty series where one point is required, or a badly shaped record.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData marks a series too short for a meaningful statistic.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNotFound marks a query for an unknown item or user.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamFetch marks an unreachable, failing or empty external data source.
	ErrUpstreamFetch = errors.New("upstream fetch failed")
)

package domain

import "errors"

var (
	ErrDuplicateSubscription = errors.New("subscription id already registered")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrBusStopped            = errors.New("bus is stopped")
	ErrMalformedToast        = errors.New("malformed toast payload")
	ErrNoActiveUser          = errors.New("no active user")
)

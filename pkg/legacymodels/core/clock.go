package core

import "time"

// Clock abstracts time so ticket expiry and lockout windows can be tested
// with a fake clock.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func NewRealClock() Clock { return RealClock{} }

func (RealClock) Now() time.Time { return time.Now() }

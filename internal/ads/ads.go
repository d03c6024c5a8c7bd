package ads

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Service is the ad capability a board may be given. Implementations must
// call back on every request; game outcomes never wait on them.
type Service interface {
	ShowInterstitial(onComplete func())
	ShowRewarded(onRewarded, onSkipped func())
}

// Disabled stands in when no ad network is configured or reachable. It
// completes interstitials and grants rewards immediately.
type Disabled struct{}

func (Disabled) ShowInterstitial(onComplete func()) {
	call(onComplete)
}

func (Disabled) ShowRewarded(onRewarded, _ func()) {
	call(onRewarded)
}

type deadline struct {
	next  Service
	after time.Duration
}

// WithDeadline wraps svc so every request settles within d: if svc has not
// called back by then, the interstitial completes or the reward is granted.
// Each request fires at most one of its callbacks.
func WithDeadline(svc Service, d time.Duration) Service {
	if svc == nil {
		return Disabled{}
	}
	if d <= 0 {
		d = 5 * time.Second
	}
	return &deadline{next: svc, after: d}
}

func (s *deadline) ShowInterstitial(onComplete func()) {
	var once sync.Once
	done := func() { once.Do(func() { call(onComplete) }) }
	timer := time.AfterFunc(s.after, func() {
		log.Warn().Dur("after", s.after).Msg("interstitial timed out")
		done()
	})
	s.next.ShowInterstitial(func() {
		timer.Stop()
		done()
	})
}

func (s *deadline) ShowRewarded(onRewarded, onSkipped func()) {
	var once sync.Once
	settle := func(fn func()) { once.Do(func() { call(fn) }) }
	timer := time.AfterFunc(s.after, func() {
		log.Warn().Dur("after", s.after).Msg("rewarded ad timed out; granting reward")
		settle(onRewarded)
	})
	s.next.ShowRewarded(func() {
		timer.Stop()
		settle(onRewarded)
	}, func() {
		timer.Stop()
		settle(onSkipped)
	})
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

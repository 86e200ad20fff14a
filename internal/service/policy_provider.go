package service

import (
	"sync"
	"time"

	"quiz_review_backend/internal/config"
	"quiz_review_backend/internal/grading"
)

// PolicyProvider hands the current scoring policy to the services that
// need it. The config watcher swaps the policy at runtime; reads are cheap
// and never observe a half-written value.
type PolicyProvider struct {
	mu       sync.RWMutex
	policy   grading.Policy
	claimTTL time.Duration
}

func NewPolicyProvider(cfg *config.Config) *PolicyProvider {
	p := &PolicyProvider{}
	p.Reload(cfg)
	return p
}

func (p *PolicyProvider) Policy() grading.Policy {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.policy
}

// ClaimTTL is how long an advisory review claim lives in redis.
func (p *PolicyProvider) ClaimTTL() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.claimTTL
}

func (p *PolicyProvider) Reload(cfg *config.Config) {
	policy := grading.Policy{
		RoundingStep:        cfg.Scoring.RoundingStep,
		AutoAcceptFullMatch: cfg.Scoring.AutoAcceptFullMatch,
		AmbiguousLow:        cfg.Scoring.AmbiguousLow,
		AmbiguousHigh:       cfg.Scoring.AmbiguousHigh,
	}.Normalized()

	ttl := time.Duration(cfg.Scoring.ClaimTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	p.mu.Lock()
	p.policy = policy
	p.claimTTL = ttl
	p.mu.Unlock()
}

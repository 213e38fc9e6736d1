package utils

import (
	"context"
	"crypto/rand"
	"math/big"
	"sync"
	"time"
)

const signupCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"

// in-memory fallback for cooldowns when Redis is unreachable
type cooldownEntry struct {
	expiresAt time.Time
}

var (
	cooldowns   = map[string]cooldownEntry{}
	cooldownsMu sync.Mutex
)

// GenerateSignupCode creates a random code of n characters from an
// unambiguous alphanumeric alphabet.
func GenerateSignupCode(n int) string {
	if n <= 0 {
		n = 8
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, big.NewInt(int64(len(signupCodeAlphabet))))
		if err != nil {
			// degrade to time-based selection if crypto/rand fails
			v = big.NewInt(time.Now().UnixNano() % int64(len(signupCodeAlphabet)))
		}
		out[i] = signupCodeAlphabet[v.Int64()]
	}
	return string(out)
}

// EmailCooldownTrySet sets a cooldown key for sending a signup code.
// Returns true if set, false when the address is still cooling down.
// Prefers Redis (SETNX with TTL); falls back to process memory.
func EmailCooldownTrySet(email string, cooldown time.Duration) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		key := "cooldown:email:" + email
		if ok, err := rc.SetNX(ctx, key, "1", cooldown).Result(); err == nil {
			return ok
		}
		// Redis error: fall through to memory fallback
	}
	cooldownsMu.Lock()
	defer cooldownsMu.Unlock()
	if entry, ok := cooldowns[email]; ok && time.Now().Before(entry.expiresAt) {
		return false
	}
	cooldowns[email] = cooldownEntry{expiresAt: time.Now().Add(cooldown)}
	return true
}

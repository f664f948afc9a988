package auth

import "time"

// NewTestJWTService creates a JWT service with injectable time for tests.
// Secrets shorter than production minimums are accepted so tests can use
// readable values; the timeFunc drives both issuance and validation.
func NewTestJWTService(
	accessSecret, refreshSecret string,
	accessLifetime, refreshLifetime time.Duration,
	timeFunc func() time.Time,
) JWTService {
	if timeFunc == nil {
		timeFunc = time.Now
	}
	return &hmacJWTService{
		accessKey:       []byte(accessSecret),
		refreshKey:      []byte(refreshSecret),
		accessLifetime:  accessLifetime,
		refreshLifetime: refreshLifetime,
		timeFunc:        timeFunc,
		clockSkew:       0,
	}
}

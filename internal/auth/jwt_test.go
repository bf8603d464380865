package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("staff-1", "coordinator", "workstudy", "secret", time.Minute, time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := Parse(pair.AccessToken, "secret", "workstudy")
	assert.NoError(t, err)
	assert.Equal(t, "staff-1", claims.Subject)
	assert.Equal(t, "coordinator", claims.Role)
}

func TestIssuePairSharesIssueInstant(t *testing.T) {
	pair, err := Issue("staff-1", "coordinator", "workstudy", "secret", 15*time.Minute, 24*time.Hour)
	assert.NoError(t, err)
	assert.True(t, pair.AccessExp.Before(pair.RefreshExp))

	// Both tokens are cut from the same clock reading, so their
	// expiries differ by exactly the TTL gap.
	assert.Equal(t, 24*time.Hour-15*time.Minute, pair.RefreshExp.Sub(pair.AccessExp))

	refresh, err := Parse(pair.RefreshToken, "secret", "workstudy")
	assert.NoError(t, err)
	assert.Equal(t, "staff-1", refresh.Subject)
	assert.Equal(t, "coordinator", refresh.Role)
}

func TestParseRejectsWrongKey(t *testing.T) {
	pair, err := Issue("staff-1", "coordinator", "workstudy", "secret", time.Minute, time.Hour)
	assert.NoError(t, err)

	_, err = Parse(pair.AccessToken, "other-secret", "workstudy")
	assert.Error(t, err)
}

func TestParseRejectsIssuerMismatch(t *testing.T) {
	pair, err := Issue("staff-1", "coordinator", "someone-else", "secret", time.Minute, time.Hour)
	assert.NoError(t, err)

	_, err = Parse(pair.AccessToken, "secret", "workstudy")
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	pair, err := Issue("staff-1", "coordinator", "workstudy", "secret", -time.Minute, time.Hour)
	assert.NoError(t, err)

	_, err = Parse(pair.AccessToken, "secret", "workstudy")
	assert.Error(t, err)
}

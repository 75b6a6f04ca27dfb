package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseCommand(t *testing.T) {
	now := time.Now()
	tok, err := SignCommand("R101", "UNLOCK", "s3cret", DefaultIssuer, now, time.Minute)
	require.NoError(t, err)

	claims, err := ParseCommand(tok, "s3cret", DefaultIssuer)
	require.NoError(t, err)
	assert.Equal(t, "R101", claims.RoomID)
	assert.Equal(t, "UNLOCK", claims.Status)
	assert.Equal(t, "R101", claims.Subject)
}

func TestParseCommandRejects(t *testing.T) {
	now := time.Now()
	tok, err := SignCommand("R101", "LOCK", "s3cret", DefaultIssuer, now, time.Minute)
	require.NoError(t, err)

	_, err = ParseCommand(tok, "other", DefaultIssuer)
	assert.Error(t, err, "wrong key")
	_, err = ParseCommand(tok, "s3cret", "someone-else")
	assert.Error(t, err, "wrong issuer")

	stale, err := SignCommand("R101", "LOCK", "s3cret", DefaultIssuer, now.Add(-time.Hour), time.Minute)
	require.NoError(t, err)
	_, err = ParseCommand(stale, "s3cret", DefaultIssuer)
	assert.Error(t, err, "expired")

	_, err = SignCommand("R101", "LOCK", "", DefaultIssuer, now, time.Minute)
	assert.Error(t, err)
}

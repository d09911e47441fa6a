package storage

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("job-1", "hasil_gabungan_doc-1_20240101.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	jobID, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)
	require.Equal(t, "hasil_gabungan_doc-1_20240101.pdf", path)
	require.Equal(t, expiresAt, parsedExpiry)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, _, err := signer.Generate("job-1", "hasil.pdf")
	require.NoError(t, err)
	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, _, _, err = signer.Parse(token, false)
	require.True(t, errors.Is(err, ErrTokenExpired))

	jobID, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)
	require.Equal(t, "hasil.pdf", path)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("job-1", "hasil.pdf")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[0] = "job-2"
	_, _, _, err = signer.Parse(strings.Join(parts, "."), false)
	require.True(t, errors.Is(err, ErrTokenSignature))

	_, _, _, err = NewSignedURLSigner("other", time.Hour).Parse(token, false)
	require.True(t, errors.Is(err, ErrTokenSignature))

	_, _, _, err = signer.Parse("a.b.c", false)
	require.True(t, errors.Is(err, ErrTokenMalformed))

	_, _, err = signer.Generate("job.1", "hasil.pdf")
	require.Error(t, err)
	_, _, err = NewSignedURLSigner("", time.Hour).Generate("job-1", "hasil.pdf")
	require.Error(t, err)
}

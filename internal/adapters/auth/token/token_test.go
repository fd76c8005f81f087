package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_IssueAndVerify(t *testing.T) {
	m := NewManager("secreto-de-prueba", time.Hour)

	raw, err := m.Issue("user-1", "ana@clinica.pe", "VETERINARIO")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := m.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ana@clinica.pe", claims.Email)
	assert.Equal(t, "VETERINARIO", claims.Role)
}

func TestManager_ExpiredToken(t *testing.T) {
	issued := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	m := NewManager("secreto-de-prueba", time.Hour)
	m.now = func() time.Time { return issued }

	raw, err := m.Issue("user-1", "", "ADMIN")
	require.NoError(t, err)

	// Dentro de la vigencia.
	m.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err = m.Verify(context.Background(), raw)
	require.NoError(t, err)

	// Vencido.
	m.now = func() time.Time { return issued.Add(61 * time.Minute) }
	_, err = m.Verify(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_WrongSecret(t *testing.T) {
	issuer := NewManager("secreto-a", time.Hour)
	verifier := NewManager("secreto-b", time.Hour)

	raw, err := issuer.Issue("user-1", "", "ADMIN")
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_EmptyToken(t *testing.T) {
	m := NewManager("secreto-de-prueba", time.Hour)

	_, err := m.Verify(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_GarbageToken(t *testing.T) {
	m := NewManager("secreto-de-prueba", time.Hour)

	_, err := m.Verify(context.Background(), "ni.siquiera.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/lyrix/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

func TestSessionCodec(t *testing.T) {
	t.Run("SignAndVerify", func(t *testing.T) {
		codec := NewSessionCodec("test-secret")

		token, err := codec.Sign("spotify-user-1")
		if err != nil {
			t.Fatalf("failed to sign session: %v", err)
		}

		userID, err := codec.Verify(token)
		if err != nil {
			t.Fatalf("failed to verify session: %v", err)
		}
		if userID != "spotify-user-1" {
			t.Errorf("expected user spotify-user-1, got %s", userID)
		}
	})

	t.Run("SignEmptyUser", func(t *testing.T) {
		codec := NewSessionCodec("test-secret")

		if _, err := codec.Sign(""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := NewSessionCodec("test-secret").Sign("spotify-user-1")
		if err != nil {
			t.Fatalf("failed to sign session: %v", err)
		}

		_, err = NewSessionCodec("other-secret").Verify(token)
		if !errors.Is(err, shared.ErrSessionInvalid) {
			t.Errorf("expected ErrSessionInvalid, got %v", err)
		}
	})

	t.Run("Tampered", func(t *testing.T) {
		codec := NewSessionCodec("test-secret")

		token, err := codec.Sign("spotify-user-1")
		if err != nil {
			t.Fatalf("failed to sign session: %v", err)
		}

		tampered := token[:len(token)-2] + "xx"
		if _, err := codec.Verify(tampered); !errors.Is(err, shared.ErrSessionInvalid) {
			t.Errorf("expected ErrSessionInvalid, got %v", err)
		}
	})

	t.Run("Garbage", func(t *testing.T) {
		codec := NewSessionCodec("test-secret")

		if _, err := codec.Verify("not-a-jwt"); !errors.Is(err, shared.ErrSessionInvalid) {
			t.Errorf("expected ErrSessionInvalid, got %v", err)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		codec := NewSessionCodec("test-secret")

		claims := jwt.RegisteredClaims{
			Subject:   "spotify-user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-48 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("failed to sign expired token: %v", err)
		}

		if _, err := codec.Verify(token); !errors.Is(err, shared.ErrSessionInvalid) {
			t.Errorf("expected ErrSessionInvalid, got %v", err)
		}
	})

	t.Run("UnsignedAlgorithmRejected", func(t *testing.T) {
		codec := NewSessionCodec("test-secret")

		claims := jwt.RegisteredClaims{
			Subject:   "spotify-user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("failed to sign none-algorithm token: %v", err)
		}

		if _, err := codec.Verify(token); !errors.Is(err, shared.ErrSessionInvalid) {
			t.Errorf("expected ErrSessionInvalid, got %v", err)
		}
	})

	t.Run("MissingSubject", func(t *testing.T) {
		codec := NewSessionCodec("test-secret")

		claims := jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}

		if _, err := codec.Verify(token); !errors.Is(err, shared.ErrSessionInvalid) {
			t.Errorf("expected ErrSessionInvalid, got %v", err)
		}
	})
}

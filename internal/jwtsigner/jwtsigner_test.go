package jwtsigner

import (
	"errors"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	s, err := NewFromBase64("", "k1", "byod")
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	tok, err := s.Sign("user-1", time.Minute, map[string]any{"role": "teacher"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims["sub"] != "user-1" || claims["role"] != "teacher" {
		t.Fatalf("unexpected claims: %v", claims)
	}
}

func TestVerifyRejects(t *testing.T) {
	s, _ := NewFromBase64("", "k1", "byod")
	other, _ := NewFromBase64("", "k1", "byod")

	expired, _ := s.Sign("u", -time.Minute, nil)
	foreign, _ := other.Sign("u", time.Minute, nil)

	for name, tok := range map[string]string{"expired": expired, "foreign key": foreign, "garbage": "a.b.c"} {
		if _, err := s.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: err = %v", name, err)
		}
	}
}

func TestNewFromBase64(t *testing.T) {
	key, err := GenerateBase64()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	a, err := NewFromBase64(key, "k", "i")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b, _ := NewFromBase64(key, "k", "i")
	if a.PublicJWK()["x"] != b.PublicJWK()["x"] {
		t.Fatalf("same key should yield same jwk")
	}
	if _, err := NewFromBase64("c2hvcnQ=", "k", "i"); err == nil {
		t.Fatalf("short key should fail")
	}
}

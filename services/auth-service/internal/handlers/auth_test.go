package handlers

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/bookora/bookora/libs/auth"
)

func TestHS256SignerRoundTrip(t *testing.T) {
	signer := NewHS256Signer("test-secret")
	now := time.Now()
	token, err := signer.Sign(auth.Claims{
		Sub:        "user-1",
		BusinessID: "biz-1",
		Role:       RoleOwner,
		Iat:        now.Unix(),
		Exp:        now.Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	claims, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Sub != "user-1" || claims.BusinessID != "biz-1" || claims.Role != RoleOwner {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := signer.Verify(token + "x"); err == nil {
		t.Fatal("expected tampered token to fail verification")
	}
}

func TestRotatingSignerVerifiesRetiredKeys(t *testing.T) {
	keyA, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	keyB, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	signer, err := NewRotatingRS256Signer(map[string]*rsa.PrivateKey{
		"kid-a": keyA,
		"kid-b": keyB,
	}, "kid-a")
	if err != nil {
		t.Fatalf("NewRotatingRS256Signer: %v", err)
	}

	now := time.Now()
	claims := auth.Claims{
		Sub:  "user-1",
		Role: RoleCustomer,
		Iat:  now.Unix(),
		Exp:  now.Add(time.Hour).Unix(),
	}

	oldToken, err := signer.Sign(claims)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if err := signer.SetActiveKid("kid-b"); err != nil {
		t.Fatalf("SetActiveKid: %v", err)
	}
	if err := signer.SetActiveKid("kid-missing"); err == nil {
		t.Fatal("expected SetActiveKid to reject unknown kid")
	}

	// Tokens issued under the previous kid stay valid for their lifetime.
	if _, err := signer.Verify(oldToken); err != nil {
		t.Fatalf("Verify of token under retired kid failed: %v", err)
	}

	newToken, err := signer.Sign(claims)
	if err != nil {
		t.Fatalf("Sign after rotation failed: %v", err)
	}
	if _, err := signer.Verify(newToken); err != nil {
		t.Fatalf("Verify after rotation failed: %v", err)
	}

	jwks := signer.JWKS()
	if len(jwks) != 2 {
		t.Fatalf("expected 2 keys in JWKS, got %d", len(jwks))
	}
}

func TestRS256SignerRejectsExpiredToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	signer, err := NewRotatingRS256Signer(map[string]*rsa.PrivateKey{"kid-a": key}, "kid-a")
	if err != nil {
		t.Fatalf("NewRotatingRS256Signer: %v", err)
	}

	now := time.Now()
	token, err := signer.Sign(auth.Claims{
		Sub: "user-1",
		Iat: now.Add(-2 * time.Hour).Unix(),
		Exp: now.Add(-time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if _, err := signer.Verify(token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

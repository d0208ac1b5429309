package token

import (
	"errors"
	"testing"
	"time"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)

	signed, err := codec.Issue(42, []string{"admin", "editor"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	res := codec.Verify(signed)
	if !res.Valid() {
		t.Fatalf("expected valid result, got %v", res.Err)
	}
	if res.Claims.UserID != 42 {
		t.Fatalf("expected uid 42, got %d", res.Claims.UserID)
	}
	if len(res.Claims.Roles) != 2 || res.Claims.Roles[0] != "admin" || res.Claims.Roles[1] != "editor" {
		t.Fatalf("roles not round-tripped: %v", res.Claims.Roles)
	}
}

func TestVerifySameInstantClaimsMatch(t *testing.T) {
	frozen := time.Unix(1700000000, 0)
	codec := NewCodec("test-secret", time.Hour)
	codec.now = func() time.Time { return frozen }

	a, err := codec.Issue(7, nil)
	if err != nil {
		t.Fatalf("issue a: %v", err)
	}
	b, err := codec.Issue(7, nil)
	if err != nil {
		t.Fatalf("issue b: %v", err)
	}

	ra, rb := codec.Verify(a), codec.Verify(b)
	if !ra.Valid() || !rb.Valid() {
		t.Fatalf("expected both valid: %v %v", ra.Err, rb.Err)
	}
	if ra.Claims.UserID != rb.Claims.UserID ||
		!ra.Claims.ExpiresAt.Equal(rb.Claims.ExpiresAt.Time) ||
		!ra.Claims.IssuedAt.Equal(rb.Claims.IssuedAt.Time) {
		t.Fatalf("decoded claims differ: %+v vs %+v", ra.Claims, rb.Claims)
	}
}

func TestVerifyExpired(t *testing.T) {
	codec := NewCodec("test-secret", time.Second)

	signed, err := codec.Issue(1, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Shift the verification clock two seconds past issue time.
	codec.now = func() time.Time { return time.Now().Add(2 * time.Second) }

	res := codec.Verify(signed)
	if res.Valid() {
		t.Fatal("expected expired token to be invalid")
	}
	if !errors.Is(res.Err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", res.Err)
	}
}

func TestVerifyBadSignature(t *testing.T) {
	signed, err := NewCodec("secret-a", time.Hour).Issue(1, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	res := NewCodec("secret-b", time.Hour).Verify(signed)
	if res.Valid() {
		t.Fatal("expected cross-secret token to be invalid")
	}
	if !errors.Is(res.Err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", res.Err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	res := NewCodec("test-secret", time.Hour).Verify("not.a.token")
	if res.Valid() {
		t.Fatal("expected malformed token to be invalid")
	}
	if !errors.Is(res.Err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", res.Err)
	}
}

func TestVerifyMissingUserClaim(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)
	signed, err := codec.Issue(0, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	res := codec.Verify(signed)
	if res.Valid() {
		t.Fatal("expected token without uid to be invalid")
	}
	if !errors.Is(res.Err, ErrMissingClaim) {
		t.Fatalf("expected ErrMissingClaim, got %v", res.Err)
	}
}

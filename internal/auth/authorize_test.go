package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func claimsFor(role Role) Claims {
	return Claims{
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "acct-1"},
	}
}

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name     string
		claims   Claims
		required []Role
		wantErr  error
	}{
		{"admin for admin", claimsFor(RoleAdmin), []Role{RoleAdmin}, nil},
		{"employee for admin", claimsFor(RoleEmployee), []Role{RoleAdmin}, ErrForbidden},
		{"employee in allowed set", claimsFor(RoleEmployee), []Role{RoleAdmin, RoleEmployee}, nil},
		{"empty required set denies", claimsFor(RoleEmployee), nil, ErrForbidden},
		{"unknown role", claimsFor(Role("superuser")), []Role{RoleAdmin}, ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.claims, tc.required...)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestClaimsContextRoundTrip(t *testing.T) {
	if _, ok := ClaimsFromContext(context.Background()); ok {
		t.Fatal("empty context should carry no claims")
	}

	claims := claimsFor(RoleAdmin)
	ctx := ContextWithClaims(context.Background(), claims)
	got, ok := ClaimsFromContext(ctx)
	if !ok {
		t.Fatal("claims missing from context")
	}
	if got.AccountID() != "acct-1" || got.Role != RoleAdmin {
		t.Fatalf("unexpected claims %+v", got)
	}
}

func TestTokenContextRoundTrip(t *testing.T) {
	if _, ok := TokenFromContext(context.Background()); ok {
		t.Fatal("empty context should carry no token")
	}
	ctx := ContextWithToken(context.Background(), "raw-token")
	token, ok := TokenFromContext(ctx)
	if !ok || token != "raw-token" {
		t.Fatalf("token = %q ok = %v", token, ok)
	}
}

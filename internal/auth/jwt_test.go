package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, "idp|123", "", time.Now())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.Subject != "idp|123" {
		t.Errorf("expected subject 'idp|123', got %q", claims.Subject)
	}
	if claims.Role != "" {
		t.Errorf("expected no role, got %q", claims.Role)
	}
	if claims.ID == "" {
		t.Error("expected a JTI")
	}
}

func TestOperatorToken(t *testing.T) {
	token, _ := GenerateToken("secret", OperatorSubject("admin"), "operator", time.Now())

	claims, err := ValidateToken("secret", token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != "operator:admin" || claims.Role != "operator" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	now := time.Now()
	a, _ := GenerateToken("secret", "sub", "", now)
	b, _ := GenerateToken("secret", "sub", "", now)

	ca, _ := ValidateToken("secret", a)
	cb, _ := ValidateToken("secret", b)
	if ca.ID == cb.ID {
		t.Errorf("expected distinct JTIs, got %q twice", ca.ID)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", "sub", "", time.Now())

	_, err := ValidateToken("secret2", token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	token, _ := GenerateToken("secret", "sub", "", time.Now().Add(-TokenExpiry-time.Hour))

	if _, err := ValidateToken("secret", token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestValidateTokenWithoutSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ValidateToken("secret", signed); err == nil {
		t.Error("expected error for token without subject")
	}
}

func TestGenerateTokenRequiresSubject(t *testing.T) {
	if _, err := GenerateToken("secret", "", "", time.Now()); err == nil {
		t.Error("expected error for empty subject")
	}
}

func TestTokenExpiry(t *testing.T) {
	now := time.Now()
	token, _ := GenerateToken("test", "sub", "", now)
	claims, _ := ValidateToken("test", token)

	expiresAt := claims.ExpiresAt.Time
	expectedExpiry := now.Add(TokenExpiry)

	// NumericDate truncates to seconds.
	diff := expectedExpiry.Sub(expiresAt)
	if diff < -time.Second || diff > time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}

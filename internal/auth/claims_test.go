package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	token, err := GenerateAccessToken(7, testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateAccessToken() returned empty token")
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	if claims.Subject != "7" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "7")
	}
	id, err := claims.UserID()
	if err != nil || id != 7 {
		t.Errorf("UserID() = %d, %v; want 7", id, err)
	}
	if claims.ID == "" {
		t.Error("JTI (ID) should not be empty")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "correct-secret", 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := ParseToken(token, "wrong-secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
	}
}

// signClaims signs arbitrary claims so tests can build tokens the
// generator would never produce.
func signClaims(t *testing.T, method jwt.SigningMethod, claims jwt.Claims, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func TestParseToken_Rejects(t *testing.T) {
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-valid-jwt"},
		{"two segments", "abc.def"},
		{
			"expired",
			signClaims(t, jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1", ExpiresAt: past}, []byte(testSecret)),
		},
		{
			"no expiry",
			signClaims(t, jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}, []byte(testSecret)),
		},
		{
			"non-numeric subject",
			signClaims(t, jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "usr-1", ExpiresAt: future}, []byte(testSecret)),
		},
		{
			"zero subject",
			signClaims(t, jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "0", ExpiresAt: future}, []byte(testSecret)),
		},
		{
			"HS512",
			signClaims(t, jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "1", ExpiresAt: future}, []byte(testSecret)),
		},
		{
			"alg none",
			signClaims(t, jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1", ExpiresAt: future}, jwt.UnsafeAllowNoneSignatureType),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.token, testSecret); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}

func TestGenerateAccessToken_DefaultTTL(t *testing.T) {
	token, err := GenerateAccessToken(1, testSecret, 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	expectedExpiry := time.Now().Add(15 * time.Minute)
	diff := claims.ExpiresAt.Time.Sub(expectedExpiry)
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("default TTL should be ~15 minutes, got expiry diff of %v", diff)
	}
}

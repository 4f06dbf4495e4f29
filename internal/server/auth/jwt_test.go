package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/withgossing/bank-app/internal/common"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	subject := "user-123"

	tok, err := GenerateToken(subject, "USER", TokenKindAccess, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.Subject != subject {
		t.Fatalf("subject mismatch: got %q want %q", claims.Subject, subject)
	}
	if claims.Role != "USER" {
		t.Fatalf("role mismatch: got %q want USER", claims.Role)
	}
	if claims.Kind != TokenKindAccess {
		t.Fatalf("kind mismatch: got %q want access", claims.Kind)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", claims.ExpiresAt)
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateToken("u1", "USER", TokenKindAccess, secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ParseToken(tok, secret)
	if !errors.Is(err, common.ErrorTokenExpired) {
		t.Fatalf("expected common.ErrorTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", "USER", TokenKindAccess, []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ParseToken(tok, []byte("wrong-secret"))
	if !errors.Is(err, common.ErrorTokenSignatureInvalid) {
		t.Fatalf("expected common.ErrorTokenSignatureInvalid, got %v", err)
	}
}

func TestParseToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not.a.jwt", []byte("k"))
	if !errors.Is(err, common.ErrorTokenMalformed) {
		t.Fatalf("expected common.ErrorTokenMalformed, got %v", err)
	}
}

func TestParseToken_TamperedSignature(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken("u3", "USER", TokenKindAccess, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	// Flip one character in the signature segment.
	b := []byte(tok)
	last := len(b) - 1
	if b[last] == 'A' {
		b[last] = 'B'
	} else {
		b[last] = 'A'
	}
	tampered := string(b)
	if tampered == tok {
		t.Fatal("tampering produced an identical token")
	}

	_, err = ParseToken(tampered, secret)
	if err == nil {
		t.Fatal("expected error for tampered token, got nil")
	}
	if !common.IsInvalidToken(err) {
		t.Fatalf("expected token error family, got %v", err)
	}
}

func TestParseToken_RejectsOtherSigningMethods(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u4",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Kind: TokenKindAccess,
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("signing HS512 token: %v", err)
	}
	if _, err := ParseToken(hs512, secret); !common.IsInvalidToken(err) {
		t.Fatalf("HS512 token must be rejected, got %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing none token: %v", err)
	}
	if _, err := ParseToken(unsigned, secret); !common.IsInvalidToken(err) {
		t.Fatalf("unsigned token must be rejected, got %v", err)
	}
}

func TestParseTokenOfKind_Mismatch(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	refresh, err := GenerateToken("u5", "USER", TokenKindRefresh, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := ParseTokenOfKind(refresh, secret, TokenKindAccess); !errors.Is(err, common.ErrorTokenWrongKind) {
		t.Fatalf("expected common.ErrorTokenWrongKind, got %v", err)
	}

	claims, err := ParseTokenOfKind(refresh, secret, TokenKindRefresh)
	if err != nil {
		t.Fatalf("ParseTokenOfKind error: %v", err)
	}
	if claims.Subject != "u5" {
		t.Fatalf("subject mismatch: got %q", claims.Subject)
	}
}

func TestGenerateToken_CompactFormat(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u6", "", TokenKindAccess, []byte("k"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if parts := strings.Split(tok, "."); len(parts) != 3 {
		t.Fatalf("expected three-segment compact token, got %d segments", len(strings.Split(tok, ".")))
	}
}

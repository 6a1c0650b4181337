package auth

import (
	"strings"
	"testing"
)

func TestHashPasswordNeverPlaintext(t *testing.T) {
	digest, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if digest == "pw" || strings.Contains(digest, "pw") {
		t.Fatalf("digest leaks plaintext: %q", digest)
	}
}

func TestCheckPasswordRoundTrip(t *testing.T) {
	digest, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !CheckPassword("correct horse", digest) {
		t.Fatal("CheckPassword rejected the original plaintext")
	}
	if CheckPassword("wrong horse", digest) {
		t.Fatal("CheckPassword accepted a different plaintext")
	}
}

func TestHashPasswordSaltedPerCall(t *testing.T) {
	first, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same plaintext should differ")
	}
	if !CheckPassword("pw", first) || !CheckPassword("pw", second) {
		t.Fatal("both digests should verify against the plaintext")
	}
}

func TestCheckPasswordMalformedDigest(t *testing.T) {
	for _, digest := range []string{"", "not-a-bcrypt-digest", "$2a$broken"} {
		if CheckPassword("pw", digest) {
			t.Fatalf("CheckPassword accepted malformed digest %q", digest)
		}
	}
}

package crypto_test

import (
	"strings"
	"testing"

	"kyro/internal/crypto"
	"kyro/internal/domain"
)

func TestDH_Agrees(t *testing.T) {
	aPriv, aPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	bPriv, bPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	ab, err := crypto.DH(aPriv, bPub)
	if err != nil {
		t.Fatalf("dh: %v", err)
	}
	ba, err := crypto.DH(bPriv, aPub)
	if err != nil {
		t.Fatalf("dh: %v", err)
	}
	if ab != ba {
		t.Fatalf("shared secrets differ")
	}
	if aPriv[0]&7 != 0 || aPriv[31]&0x80 != 0 || aPriv[31]&0x40 == 0 {
		t.Fatalf("private key not clamped: %x", aPriv)
	}
}

func TestDH_RejectsLowOrderPoint(t *testing.T) {
	priv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := crypto.DH(priv, domain.X25519Public{}); err == nil {
		t.Fatalf("expected error for all-zero public key")
	}
}

func TestParseRootKey(t *testing.T) {
	var k [32]byte
	k[0], k[31] = 0xab, 0xcd
	got, err := crypto.ParseRootKey(crypto.EncodeKey(k))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != domain.RootKey(k) {
		t.Fatalf("got %x want %x", got, k)
	}

	for _, bad := range []string{"", "zz", strings.Repeat("00", 31), strings.Repeat("00", 33)} {
		if _, err := crypto.ParseRootKey(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestFingerprint(t *testing.T) {
	a := crypto.Fingerprint([]byte("a"))
	if len(a) != 20 {
		t.Fatalf("fingerprint length %d", len(a))
	}
	if a != crypto.Fingerprint([]byte("a")) || a == crypto.Fingerprint([]byte("b")) {
		t.Fatalf("fingerprint not stable or not distinct")
	}
}

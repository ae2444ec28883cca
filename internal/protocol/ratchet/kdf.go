package ratchet

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the length of root, chain and message keys.
const KeySize = 32

// HKDF info labels.
const (
	rootInfo       = "kyro-ide-ratchet"
	messageKeyInfo = "message-key"
	chainKeyInfo   = "chain-key"
)

// kdfRK derives the next root key and a fresh chain key from rk and ikm.
// The root key is the HKDF salt; ikm is the DH output (empty for the initial chain).
func kdfRK(rk [KeySize]byte, ikm []byte) (newRK, ck [KeySize]byte, err error) {
	r := hkdf.New(sha256.New, ikm, rk[:], []byte(rootInfo))
	if _, err = io.ReadFull(r, newRK[:]); err != nil {
		return newRK, ck, fmt.Errorf("%w: root key: %v", ErrKdfFailure, err)
	}
	if _, err = io.ReadFull(r, ck[:]); err != nil {
		return newRK, ck, fmt.Errorf("%w: chain key: %v", ErrKdfFailure, err)
	}
	return newRK, ck, nil
}

// kdfCK expands the chain key into the message key and the next chain key.
// The chain key already has full entropy so it is used directly as the PRK.
func kdfCK(ck [KeySize]byte) (nextCK [KeySize]byte, mk []byte, err error) {
	mk = make([]byte, KeySize)
	if err = expand(ck[:], messageKeyInfo, mk); err != nil {
		return nextCK, nil, err
	}
	if err = expand(ck[:], chainKeyInfo, nextCK[:]); err != nil {
		return nextCK, nil, err
	}
	return nextCK, mk, nil
}

func expand(prk []byte, info string, out []byte) error {
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, []byte(info)), out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrKdfFailure, info, err)
	}
	return nil
}

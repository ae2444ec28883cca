package channel

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20poly1305"

	"kyro/internal/domain"
)

// NonceSize is the ChaCha20-Poly1305 nonce length carried in every envelope.
const NonceSize = chacha20poly1305.NonceSize

const adLabel = "kyro-ide-op"

func seal(mk, nonce, plaintext, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(mk)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, ad), nil
}

func open(mk, nonce, ciphertext, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(mk)
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, ciphertext, ad)
}

// associatedData binds every clear envelope field except the nonce, which
// the AEAD already authenticates.
func associatedData(env domain.EncryptedEnvelope) []byte {
	out := make([]byte, 0, len(adLabel)+16+4+len(env.SenderID)+4+4+8+4+len(env.SenderKey))
	out = append(out, adLabel...)
	out = append(out, env.ChannelID.Bytes()...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(env.SenderID)))
	out = append(out, string(env.SenderID)...)
	out = binary.BigEndian.AppendUint32(out, env.MessageNumber)
	out = binary.BigEndian.AppendUint32(out, env.PreviousChainLength)
	out = binary.BigEndian.AppendUint64(out, uint64(env.Timestamp))
	out = binary.BigEndian.AppendUint32(out, uint32(len(env.SenderKey)))
	out = append(out, env.SenderKey...)
	return out
}

package types

// EncryptedEnvelope is the wire value produced for every broadcast operation.
//
// MessageNumber and Nonce travel in the clear so the receiver can locate the
// key. SenderKey names the sender's current chain and PreviousChainLength is
// how many messages it sent on the chain before it; both are empty until the
// sender first rekeys. Every field except Ciphertext and Nonce is bound into
// the AEAD as associated data.
type EncryptedEnvelope struct {
	ChannelID           ChannelID `json:"channel_id"`
	SenderID            UserID    `json:"sender_id"`
	SenderKey           []byte    `json:"sender_key,omitempty"`
	Ciphertext          []byte    `json:"ciphertext"`
	Nonce               []byte    `json:"nonce"`
	MessageNumber       uint32    `json:"message_number"`
	PreviousChainLength uint32    `json:"previous_chain_length,omitempty"`
	Timestamp           int64     `json:"timestamp"` // unix micro
}

package interfaces

import domaintypes "kyro/internal/domain/types"

// ChannelService owns encrypted collaboration channels and is the single entry
// point for sealing and opening operations.
type ChannelService interface {
	CreateChannel(rootKey domaintypes.RootKey) (domaintypes.ChannelID, error)
	OpenChannel(id domaintypes.ChannelID, rootKey domaintypes.RootKey) error
	CloseChannel(id domaintypes.ChannelID) error

	JoinChannel(id domaintypes.ChannelID, user domaintypes.UserID) error
	LeaveChannel(id domaintypes.ChannelID, user domaintypes.UserID) error
	ChannelsFor(user domaintypes.UserID) []domaintypes.ChannelID

	Broadcast(
		id domaintypes.ChannelID,
		op domaintypes.CollaborationOperation,
	) (domaintypes.EncryptedEnvelope, error)
	Receive(env domaintypes.EncryptedEnvelope) (domaintypes.CollaborationOperation, error)
}

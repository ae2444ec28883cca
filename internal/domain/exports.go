package domain

import (
	interfaces "kyro/internal/domain/interfaces"
	types "kyro/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	UserID                 = types.UserID
	ChannelID              = types.ChannelID
	RootKey                = types.RootKey
	X25519Public           = types.X25519Public
	X25519Private          = types.X25519Private
	OperationKind          = types.OperationKind
	CollaborationOperation = types.CollaborationOperation
	Insert                 = types.Insert
	Delete                 = types.Delete
	CursorMove             = types.CursorMove
	Selection              = types.Selection
	FileOpen               = types.FileOpen
	FileClose              = types.FileClose
	EncryptedEnvelope      = types.EncryptedEnvelope
)

// Operation kinds re-exported from the types subpackage.
const (
	KindInsert     = types.KindInsert
	KindDelete     = types.KindDelete
	KindCursorMove = types.KindCursorMove
	KindSelection  = types.KindSelection
	KindFileOpen   = types.KindFileOpen
	KindFileClose  = types.KindFileClose
)

// Constructors re-exported from the types subpackage.
var (
	NewChannelID   = types.NewChannelID
	ParseChannelID = types.ParseChannelID
	NewInsert      = types.NewInsert
	NewDelete      = types.NewDelete
	NewCursorMove  = types.NewCursorMove
	NewSelection   = types.NewSelection
	NewFileOpen    = types.NewFileOpen
	NewFileClose   = types.NewFileClose
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	ChannelService = interfaces.ChannelService
)

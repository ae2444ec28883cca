package types

import (
	"time"

	"github.com/google/uuid"
)

// OperationKind tags the payload carried by a CollaborationOperation.
type OperationKind string

const (
	KindInsert     OperationKind = "insert"
	KindDelete     OperationKind = "delete"
	KindCursorMove OperationKind = "cursor_move"
	KindSelection  OperationKind = "selection"
	KindFileOpen   OperationKind = "file_open"
	KindFileClose  OperationKind = "file_close"
)

// Insert adds Text at Position.
type Insert struct {
	Position uint32 `cbor:"1,keyasint" json:"position"`
	Text     string `cbor:"2,keyasint" json:"text" validate:"required"`
}

// Delete removes Length characters starting at Position.
type Delete struct {
	Position uint32 `cbor:"1,keyasint" json:"position"`
	Length   uint32 `cbor:"2,keyasint" json:"length" validate:"gt=0"`
}

// CursorMove reports a caret position inside File.
type CursorMove struct {
	Line   uint32 `cbor:"1,keyasint" json:"line"`
	Column uint32 `cbor:"2,keyasint" json:"column"`
	File   string `cbor:"3,keyasint" json:"file" validate:"required"`
}

// Selection reports a selected range inside File.
type Selection struct {
	File        string `cbor:"1,keyasint" json:"file" validate:"required"`
	StartLine   uint32 `cbor:"2,keyasint" json:"start_line"`
	StartColumn uint32 `cbor:"3,keyasint" json:"start_column"`
	EndLine     uint32 `cbor:"4,keyasint" json:"end_line" validate:"gtefield=StartLine"`
	EndColumn   uint32 `cbor:"5,keyasint" json:"end_column"`
}

// FileOpen announces that a participant opened Path.
type FileOpen struct {
	Path string `cbor:"1,keyasint" json:"path" validate:"required"`
}

// FileClose announces that a participant closed Path.
type FileClose struct {
	Path string `cbor:"1,keyasint" json:"path" validate:"required"`
}

// CollaborationOperation is the plaintext produced and consumed by the CRDT
// layer. Exactly one payload pointer is set, the one matching Kind.
type CollaborationOperation struct {
	ID        uuid.UUID     `cbor:"1,keyasint" json:"id"`
	UserID    UserID        `cbor:"2,keyasint" json:"user_id" validate:"required"`
	Timestamp int64         `cbor:"3,keyasint" json:"timestamp"` // unix micro
	Kind      OperationKind `cbor:"4,keyasint" json:"kind" validate:"required,oneof=insert delete cursor_move selection file_open file_close"`

	Insert     *Insert     `cbor:"5,keyasint,omitempty" json:"insert,omitempty"`
	Delete     *Delete     `cbor:"6,keyasint,omitempty" json:"delete,omitempty"`
	CursorMove *CursorMove `cbor:"7,keyasint,omitempty" json:"cursor_move,omitempty"`
	Selection  *Selection  `cbor:"8,keyasint,omitempty" json:"selection,omitempty"`
	FileOpen   *FileOpen   `cbor:"9,keyasint,omitempty" json:"file_open,omitempty"`
	FileClose  *FileClose  `cbor:"10,keyasint,omitempty" json:"file_close,omitempty"`
}

func newOperation(user UserID, kind OperationKind) CollaborationOperation {
	return CollaborationOperation{
		ID:        uuid.New(),
		UserID:    user,
		Timestamp: time.Now().UnixMicro(),
		Kind:      kind,
	}
}

// NewInsert builds an Insert operation stamped with a fresh id and the current time.
func NewInsert(user UserID, position uint32, text string) CollaborationOperation {
	op := newOperation(user, KindInsert)
	op.Insert = &Insert{Position: position, Text: text}
	return op
}

// NewDelete builds a Delete operation.
func NewDelete(user UserID, position, length uint32) CollaborationOperation {
	op := newOperation(user, KindDelete)
	op.Delete = &Delete{Position: position, Length: length}
	return op
}

// NewCursorMove builds a CursorMove operation.
func NewCursorMove(user UserID, file string, line, column uint32) CollaborationOperation {
	op := newOperation(user, KindCursorMove)
	op.CursorMove = &CursorMove{Line: line, Column: column, File: file}
	return op
}

// NewSelection builds a Selection operation.
func NewSelection(user UserID, sel Selection) CollaborationOperation {
	op := newOperation(user, KindSelection)
	op.Selection = &sel
	return op
}

// NewFileOpen builds a FileOpen operation.
func NewFileOpen(user UserID, path string) CollaborationOperation {
	op := newOperation(user, KindFileOpen)
	op.FileOpen = &FileOpen{Path: path}
	return op
}

// NewFileClose builds a FileClose operation.
func NewFileClose(user UserID, path string) CollaborationOperation {
	op := newOperation(user, KindFileClose)
	op.FileClose = &FileClose{Path: path}
	return op
}

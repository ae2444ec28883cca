package channel

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"kyro/internal/domain"
)

var validate = validator.New()

// encMode produces canonical bytes: sorted integer keys, shortest forms.
var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

var decMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

// ValidateOperation checks field constraints and that exactly the payload
// matching Kind is present.
func ValidateOperation(op domain.CollaborationOperation) error {
	if op.ID == uuid.Nil {
		return fmt.Errorf("%w: missing id", ErrInvalidOperation)
	}
	if err := validate.Struct(op); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}
	present := []bool{
		op.Insert != nil,
		op.Delete != nil,
		op.CursorMove != nil,
		op.Selection != nil,
		op.FileOpen != nil,
		op.FileClose != nil,
	}
	if lo.Count(present, true) != 1 || !payloadMatchesKind(op) {
		return fmt.Errorf("%w: payload does not match kind %q", ErrInvalidOperation, op.Kind)
	}
	return nil
}

func payloadMatchesKind(op domain.CollaborationOperation) bool {
	switch op.Kind {
	case domain.KindInsert:
		return op.Insert != nil
	case domain.KindDelete:
		return op.Delete != nil
	case domain.KindCursorMove:
		return op.CursorMove != nil
	case domain.KindSelection:
		return op.Selection != nil
	case domain.KindFileOpen:
		return op.FileOpen != nil
	case domain.KindFileClose:
		return op.FileClose != nil
	}
	return false
}

// MarshalOperation validates op and returns its canonical encoding.
func MarshalOperation(op domain.CollaborationOperation) ([]byte, error) {
	if err := ValidateOperation(op); err != nil {
		return nil, err
	}
	return encMode.Marshal(op)
}

// UnmarshalOperation decodes and validates an operation.
func UnmarshalOperation(b []byte) (domain.CollaborationOperation, error) {
	var op domain.CollaborationOperation
	if err := decMode.Unmarshal(b, &op); err != nil {
		return domain.CollaborationOperation{}, fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}
	if err := ValidateOperation(op); err != nil {
		return domain.CollaborationOperation{}, err
	}
	return op, nil
}

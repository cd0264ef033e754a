package payment

import (
	"errors"
	"fmt"
	"strings"
)

// ReferenceKind distinguishes the two payable sources a checkout session can
// be opened for.
type ReferenceKind string

const (
	KindBasket ReferenceKind = "basket"
	KindOrder  ReferenceKind = "order"
)

// ErrInvalidReference is returned for client reference strings that do not
// match the <kind>_<id> encoding.
var ErrInvalidReference = errors.New("invalid session reference")

// Reference encodes a payable identity into the opaque string carried through
// Stripe's client_reference_id field.
func Reference(kind ReferenceKind, id string) string {
	return fmt.Sprintf("%s_%s", kind, id)
}

// ParseReference decodes a client reference string. The encoding is strict:
// exactly one underscore, a known kind, and a non-empty id.
func ParseReference(ref string) (ReferenceKind, string, error) {
	parts := strings.Split(ref, "_")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	kind := ReferenceKind(parts[0])
	if kind != KindBasket && kind != KindOrder {
		return "", "", fmt.Errorf("%w: unknown kind %q", ErrInvalidReference, parts[0])
	}
	if parts[1] == "" {
		return "", "", fmt.Errorf("%w: empty id", ErrInvalidReference)
	}
	return kind, parts[1], nil
}

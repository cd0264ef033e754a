package payment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReferenceRoundTrip(t *testing.T) {
	for _, kind := range []ReferenceKind{KindBasket, KindOrder} {
		ref := Reference(kind, "42")
		gotKind, gotID, err := ParseReference(ref)
		require.NoError(t, err)
		require.Equal(t, kind, gotKind)
		require.Equal(t, "42", gotID)
	}
	require.Equal(t, "basket_42", Reference(KindBasket, "42"))
	require.Equal(t, "order_7", Reference(KindOrder, "7"))
}

func TestParseReferenceRejectsMalformed(t *testing.T) {
	for _, ref := range []string{
		"",
		"basket",
		"basket_",
		"_42",
		"basket_1_2",
		"widget_5",
		"order-7",
		"BASKET_42",
	} {
		_, _, err := ParseReference(ref)
		require.ErrorIs(t, err, ErrInvalidReference, "reference %q", ref)
	}
}

package evalerr

import (
	"errors"
	"testing"
)

func TestErrorMessagesAreNonEmpty(t *testing.T) {
	errs := []*Error{
		NewUnexpectedToken(3, "NUMBER"),
		NewUnmatchedParen(1),
		NewTrailingGarbage(5),
		NewEmptyExpression(),
		NewInvalidNumber(0),
		NewInvalidIdentifier(2),
		NewUnknownVariable("x"),
		NewUnknownFunction("f"),
		NewUnknownAttribute("req", "url"),
		NewArrayOutOfBounds("arr", 9),
		NewArityMismatch("f", 2, 1),
		NewCapacityExceeded("variables"),
		NewInvalidUTF8(),
		NewAlreadyInitialized(),
	}
	for _, e := range errs {
		if e.Error() == "" {
			t.Errorf("Kind %v produced empty Error() string", e.Kind)
		}
		if e.Kind.String() == "Unknown" {
			t.Errorf("Kind %d has no String() mapping", e.Kind)
		}
	}
}

func TestIsMatchesOnKindOnly(t *testing.T) {
	a := NewUnknownFunction("foo")
	b := NewUnknownFunction("bar")
	if !errors.Is(a, b) {
		t.Error("errors with the same Kind but different Name should compare equal via Is")
	}
	c := NewUnknownVariable("foo")
	if errors.Is(a, c) {
		t.Error("errors with different Kinds should not compare equal via Is")
	}
}

func TestSentinelMatchesConstructedError(t *testing.T) {
	err := NewCapacityExceeded("arena nodes")
	if !errors.Is(err, Sentinel(CapacityExceeded)) {
		t.Error("Sentinel(CapacityExceeded) should match a constructed CapacityExceeded error")
	}
	if errors.Is(err, Sentinel(ArityMismatch)) {
		t.Error("Sentinel(ArityMismatch) should not match a CapacityExceeded error")
	}
}

func TestErrorsAsExtractsKind(t *testing.T) {
	var err error = NewArityMismatch("pow", 2, 3)
	var evErr *Error
	if !errors.As(err, &evErr) {
		t.Fatal("errors.As failed to extract *Error")
	}
	if evErr.Kind != ArityMismatch || evErr.Expected != 2 || evErr.Actual != 3 {
		t.Errorf("extracted error = %+v, want Kind=ArityMismatch Expected=2 Actual=3", evErr)
	}
}

func TestUnknownKindStringIsUnknown(t *testing.T) {
	if Kind(999).String() != "Unknown" {
		t.Error("out-of-range Kind should stringify to Unknown")
	}
}

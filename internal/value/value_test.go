package value

import "testing"

func TestSQLCmpNullPropagates(t *testing.T) {
	ord, err := Null().SQLCmp(FromNumber(NewInt(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ord != OrdNull {
		t.Fatalf("comparing against NULL must propagate NULL, got %v", ord)
	}
}

func TestIdentityEqualNullIsNull(t *testing.T) {
	if !Null().IdentityEqual(Null()) {
		t.Fatalf("NULL IS NULL must be true, unlike SQLCmp")
	}
	if Null().IdentityEqual(FromNumber(NewInt(0))) {
		t.Fatalf("NULL IS 0 must be false")
	}
}

func TestSQLCmpTypeMismatchErrors(t *testing.T) {
	_, err := FromNumber(NewInt(1)).SQLCmp(FromString("x"))
	if err == nil {
		t.Fatalf("comparing a number with a string should error")
	}
}

func TestSQLCmpNumbersAndBytes(t *testing.T) {
	ord, err := FromNumber(NewInt(1)).SQLCmp(FromNumber(NewInt(2)))
	if err != nil || ord != OrdLess {
		t.Fatalf("got (%v, %v), want (OrdLess, nil)", ord, err)
	}
	ord, err = FromString("b").SQLCmp(FromString("a"))
	if err != nil || ord != OrdGreater {
		t.Fatalf("got (%v, %v), want (OrdGreater, nil)", ord, err)
	}
}

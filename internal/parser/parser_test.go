package parser

import "testing"

func TestErrorKindString(t *testing.T) {
	cases := map[ErrorKind]string{
		InvalidSyntax:       "InvalidSyntax",
		UnsupportedFeature:  "UnsupportedFeature",
		InternalError:       "InternalError",
		ErrorKind(99):       "InternalError",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: InvalidSyntax, Message: "unexpected token"}
	if err.Error() != "InvalidSyntax: unexpected token" {
		t.Errorf("Error() = %q", err.Error())
	}
}

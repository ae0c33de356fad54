package gg

import (
	"errors"
	"testing"
)

func TestErrorFormatsWithAndWithoutWrapped(t *testing.T) {
	bare := newError("Op", ErrEmptyPath, nil)
	if got, want := bare.Error(), "vgraph: Op: empty path"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := newError("Op", ErrBadArgument, errors.New("boom"))
	if got, want := wrapped.Error(), "vgraph: Op: bad argument: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	e := newError("Op", ErrBadArgument, inner)
	if !errors.Is(e, inner) {
		t.Errorf("errors.Is did not see through Unwrap()")
	}
}

func TestErrorKindStrings(t *testing.T) {
	cases := map[ErrorKind]string{
		ErrOutOfMemory:         "out of memory",
		ErrTriangulationFailed: "triangulation failed",
		ErrInvalidIndex:        "invalid index",
		ErrEmptyPath:           "empty path",
		ErrCountMismatch:       "count mismatch",
		ErrBadArgument:         "bad argument",
		ErrRasterizerTooSmall:  "rasterizer buffer too small",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", k, got, want)
		}
	}
}

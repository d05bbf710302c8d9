package errors

import (
	stdlib "errors"
	"fmt"
	"testing"

	"github.com/pkg/errors"
)

func TestCause(t *testing.T) {
	std := stdlib.New("this is a stdlib error")

	cases := map[string]struct {
		err  error
		root error
	}{
		"Errors are self-causing": {
			err:  ErrNotFound,
			root: ErrNotFound,
		},
		"Wrap reveals root cause": {
			err:  Wrap(ErrNotFound, "foo"),
			root: ErrNotFound,
		},
		"Cause works for stderr as root": {
			err:  Wrap(std, "Some helpful text"),
			root: std,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := errors.Cause(tc.err); got != tc.root {
				t.Fatal("unexpected result")
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		a      *Error
		b      error
		wantIs bool
	}{
		"instance of the same error": {
			a:      ErrNotFound,
			b:      ErrNotFound,
			wantIs: true,
		},
		"two different coded errors": {
			a:      ErrNotFound,
			b:      ErrModel,
			wantIs: false,
		},
		"successful comparison to a wrapped error": {
			a:      ErrNotFound,
			b:      Wrap(ErrNotFound, "gone"),
			wantIs: true,
		},
		"successful comparison to a pkg/errors wrapped error": {
			a:      ErrNotFound,
			b:      errors.Wrap(ErrNotFound, "gone"),
			wantIs: true,
		},
		"unsuccessful comparison to a wrapped error": {
			a:      ErrNotFound,
			b:      Wrap(ErrOverflow, "too big"),
			wantIs: false,
		},
		"not equal to stdlib error": {
			a:      ErrNotFound,
			b:      fmt.Errorf("stdlib error"),
			wantIs: false,
		},
		"nil is nil": {
			a:      nil,
			b:      nil,
			wantIs: true,
		},
		"nil is not not-nil": {
			a:      nil,
			b:      ErrState,
			wantIs: false,
		},
		"multi error contains": {
			a:      ErrInput,
			b:      Append(ErrState, Field("Owners", ErrInput, "duplicate")),
			wantIs: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.a.Is(tc.b); got != tc.wantIs {
				t.Fatalf("unexpected result - want %v, got %v", tc.wantIs, got)
			}
		})
	}
}

func TestRegisterTwiceIsPanicking(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("code reuse must panic")
		}
	}()
	Register(ErrNotFound.code, "not found twice")
}

func TestCode(t *testing.T) {
	cases := map[string]struct {
		err  error
		want uint32
	}{
		"nil":            {err: nil, want: 0},
		"root":           {err: ErrExpired, want: 15},
		"wrapped":        {err: Wrapf(ErrExpired, "at %d", 42), want: 15},
		"stdlib":         {err: fmt.Errorf("boom"), want: internalCode},
		"multi uses 1st": {err: Append(ErrInput, ErrState), want: 14},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := Code(tc.err); got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err)
		panic("at the disco")
	}
	err := fn()
	if !ErrPanic.Is(err) {
		t.Fatalf("want panic error, got %+v", err)
	}
	if !ErrPanic.Is(err) || Redact(err) == err {
		t.Fatal("panic must be redacted")
	}
}

func TestAppend(t *testing.T) {
	if err := Append(nil, nil); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	single := Wrap(ErrInput, "one")
	if err := Append(nil, single); err != single {
		t.Fatalf("single error must be returned unchanged, got %v", err)
	}
	err := Append(ErrInput, Append(ErrState, ErrEmpty))
	m, ok := err.(*multiErr)
	if !ok {
		t.Fatalf("want multi error, got %T", err)
	}
	if len(m.errs) != 3 {
		t.Fatalf("nested multi errors must be flattened, got %d", len(m.errs))
	}
}

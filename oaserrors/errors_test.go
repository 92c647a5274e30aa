package oaserrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := &ParseError{
			Path:    "schemas/user.yaml",
			Line:    42,
			Column:  10,
			Message: "invalid syntax",
			Cause:   cause,
		}

		msg := err.Error()
		if msg != "parse error in schemas/user.yaml at line 42, column 10: invalid syntax: underlying error" {
			t.Errorf("unexpected error message: %s", msg)
		}
	})

	t.Run("Error message with minimal fields", func(t *testing.T) {
		err := &ParseError{}
		if err.Error() != "parse error" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("underlying")
		err := &ParseError{Cause: cause}
		//nolint:errorlint // testing pointer identity
		if unwrapped := err.Unwrap(); unwrapped != cause {
			t.Error("Unwrap should return cause")
		}
	})

	t.Run("Is matches ErrParse only", func(t *testing.T) {
		err := &ParseError{}
		if !errors.Is(err, ErrParse) {
			t.Error("should match ErrParse")
		}
		if errors.Is(err, ErrReference) {
			t.Error("should not match ErrReference")
		}
	})
}

func TestCollisionError(t *testing.T) {
	err := &CollisionError{
		Section:      "definitions",
		Key:          "User",
		FirstSource:  "schemas/common.yaml",
		SecondSource: "schemas/user.yaml",
	}

	want := `name collision: definitions "User" defined in both schemas/common.yaml and schemas/user.yaml`
	if err.Error() != want {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrCollision) {
		t.Error("should match ErrCollision")
	}

	wrapped := fmt.Errorf("assembler: %w", err)
	var target *CollisionError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should find CollisionError through wrapping")
	}
	if target.Key != "User" {
		t.Errorf("Key = %q, want User", target.Key)
	}
}

func TestMalformedPointerError(t *testing.T) {
	err := &MalformedPointerError{Raw: "User", Path: "paths./login", Message: "missing #/"}
	want := `malformed pointer "User" at paths./login: missing #/`
	if err.Error() != want {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrMalformedPointer) {
		t.Error("should match ErrMalformedPointer")
	}
}

func TestReferenceError(t *testing.T) {
	t.Run("Unresolved", func(t *testing.T) {
		err := &ReferenceError{Ref: "#/definitions/Ghost", Path: "paths./login.responses.400"}
		want := "unresolved reference: #/definitions/Ghost at paths./login.responses.400"
		if err.Error() != want {
			t.Errorf("unexpected error message: %s", err.Error())
		}
		if !errors.Is(err, ErrReference) {
			t.Error("should match ErrReference")
		}
		if !errors.Is(err, ErrUnresolvedReference) {
			t.Error("should match ErrUnresolvedReference")
		}
		if errors.Is(err, ErrCircularReference) {
			t.Error("should not match ErrCircularReference")
		}
	})

	t.Run("Circular", func(t *testing.T) {
		err := &ReferenceError{Ref: "#/components/schemas/A", IsCircular: true, Cycle: []string{"A", "B"}}
		want := "circular reference: #/components/schemas/A (A -> B -> A)"
		if err.Error() != want {
			t.Errorf("unexpected error message: %s", err.Error())
		}
		if !errors.Is(err, ErrCircularReference) {
			t.Error("should match ErrCircularReference")
		}
		if errors.Is(err, ErrUnresolvedReference) {
			t.Error("should not match ErrUnresolvedReference")
		}
	})
}

func TestResourceLimitError(t *testing.T) {
	err := &ResourceLimitError{ResourceType: "inline_depth", Limit: 64, Actual: 65}
	want := "resource limit exceeded: inline_depth (limit: 64, actual: 65)"
	if err.Error() != want {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrResourceLimit) {
		t.Error("should match ErrResourceLimit")
	}
}

func TestConfigError(t *testing.T) {
	cause := errors.New("bad")
	err := &ConfigError{Option: "schema-strategy", Value: "sometimes", Message: "unknown strategy", Cause: cause}
	want := "configuration error for schema-strategy (value: sometimes): unknown strategy: bad"
	if err.Error() != want {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrConfig) {
		t.Error("should match ErrConfig")
	}
	if !errors.Is(err, cause) {
		t.Error("should unwrap to cause")
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&CollisionError{}, "NameCollision"},
		{&MalformedPointerError{}, "MalformedPointer"},
		{&ReferenceError{}, "UnresolvedReference"},
		{&ReferenceError{IsCircular: true}, "CircularReference"},
		{&ParseError{}, "ParseError"},
		{&ResourceLimitError{}, "ResourceLimit"},
		{&ConfigError{}, "ConfigError"},
		{fmt.Errorf("merger: %w", &ReferenceError{IsCircular: true}), "CircularReference"},
		{errors.New("other"), "Error"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

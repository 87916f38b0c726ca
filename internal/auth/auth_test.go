package auth_test

import (
	"errors"
	"testing"

	"github.com/ldtran/examdesk/internal/auth"
)

const testSecret = "a-long-enough-secret-for-tests"

func TestNewManager(t *testing.T) {
	if _, err := auth.NewManager(""); err == nil {
		t.Error("empty secret should be rejected")
	}
	if _, err := auth.NewManager(testSecret); err != nil {
		t.Errorf("NewManager: %v", err)
	}
}

func TestGenerateAndValidate(t *testing.T) {
	m, err := auth.NewManager(testSecret)
	if err != nil {
		t.Fatal(err)
	}

	token, err := m.Generate("student1", auth.RoleStudent)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	t.Run("Valid", func(t *testing.T) {
		claims, err := m.Validate(token)
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if claims.UserID != "student1" {
			t.Errorf("UserID = %q", claims.UserID)
		}
		if claims.Role != auth.RoleStudent {
			t.Errorf("Role = %q", claims.Role)
		}
	})

	t.Run("BearerPrefixTolerated", func(t *testing.T) {
		if _, err := m.Validate("Bearer " + token); err != nil {
			t.Errorf("Validate with prefix: %v", err)
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other, _ := auth.NewManager("a-completely-different-secret!")
		if _, err := other.Validate(token); !errors.Is(err, auth.ErrInvalidToken) {
			t.Errorf("foreign token: %v", err)
		}
	})

	t.Run("Garbage", func(t *testing.T) {
		if _, err := m.Validate("not.a.jwt"); !errors.Is(err, auth.ErrInvalidToken) {
			t.Errorf("garbage token: %v", err)
		}
	})
}

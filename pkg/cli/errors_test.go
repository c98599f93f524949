package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("server.listen_address", "must not be empty")
	if !strings.Contains(err.Error(), "server.listen_address") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestConfigError_WholeFile(t *testing.T) {
	err := NewConfigError("", "failed to load config: no such file")
	want := "config error: failed to load config: no such file"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCommandError_Unwrap(t *testing.T) {
	cause := errors.New("agents dir not found")
	err := NewCommandError("agents", cause)

	if !errors.Is(err, cause) {
		t.Error("CommandError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "agents") {
		t.Errorf("Error() = %q", err.Error())
	}
}

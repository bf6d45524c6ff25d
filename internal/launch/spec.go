package launch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
)

// ErrInvalidInput is returned when the device name is blank.
var ErrInvalidInput = errors.New("device name must not be empty")

const (
	commandPrefix = `-f dshow -i video="`
	commandSuffix = `"`
)

// Spec describes a single player launch.
type Spec struct {
	// Executable is the absolute path of the player binary.
	Executable string
	// Dir is the working directory of the child, always the directory
	// containing Executable.
	Dir string
	// Device is the trimmed capture device name.
	Device string
	// CommandLine is the argument string handed to the player.
	CommandLine string
}

// NewSpec builds the launch spec for device. The device name is trimmed but
// otherwise inserted into the command line as-is: embedded quotes are not
// escaped.
func NewSpec(executable, device string) (Spec, error) {
	trimmed := strings.TrimSpace(device)
	if trimmed == "" {
		return Spec{}, ErrInvalidInput
	}
	return Spec{
		Executable:  executable,
		Dir:         filepath.Dir(executable),
		Device:      trimmed,
		CommandLine: CommandLine(trimmed),
	}, nil
}

// CommandLine renders the player argument string for device.
func CommandLine(device string) string {
	return commandPrefix + device + commandSuffix
}

// Argv splits the command line into individual arguments using shell word
// rules. Platforms that pass a raw command line to the child do not need it.
func (s Spec) Argv() ([]string, error) {
	args, err := shellquote.Split(s.CommandLine)
	if err != nil {
		return nil, fmt.Errorf("parse command line %q: %w", s.CommandLine, err)
	}
	return args, nil
}

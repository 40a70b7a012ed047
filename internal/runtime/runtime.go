// Package runtime classifies a container's entry-point script into a
// runtime tag and maps tags to interpreter executables.
package runtime

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Runtime is a closed set of runtime tags. The tag is detected once at
// container creation and stored verbatim; Unknown is a valid, launchable
// tag, not an error.
type Runtime string

const (
	Python2 Runtime = "python2"
	Python3 Runtime = "python3"
	Unknown Runtime = "unknown"
)

// ErrDetection is returned when the script cannot be read for
// classification.
var ErrDetection = errors.New("runtime detection failed")

// Detect classifies a script by its shebang line, falling back to the file
// extension. Scripts that cannot be classified get the Unknown tag; only a
// read failure is an error.
func Detect(scriptPath string) (Runtime, error) {
	f, err := os.Open(scriptPath)
	if err != nil {
		return Unknown, fmt.Errorf("%w: %v", ErrDetection, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#!") {
			switch {
			case strings.Contains(line, "python3"):
				return Python3, nil
			case strings.Contains(line, "python2"):
				return Python2, nil
			case strings.Contains(line, "python"):
				// Bare "python" shebang: ambiguous, launch with
				// the generic interpreter.
				return Unknown, nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Unknown, fmt.Errorf("%w: %v", ErrDetection, err)
	}

	if filepath.Ext(scriptPath) == ".py" {
		return Python3, nil
	}
	return Unknown, nil
}

// Parse maps a stored tag string back onto the closed set. Anything
// unrecognized collapses to Unknown so stale records from older versions
// still launch.
func Parse(tag string) Runtime {
	switch Runtime(tag) {
	case Python2:
		return Python2
	case Python3:
		return Python3
	default:
		return Unknown
	}
}

// Executable returns the interpreter to run for a tag. The table is
// exhaustive over the closed set; Unknown falls back to the generic
// interpreter rather than failing.
func (r Runtime) Executable() string {
	switch r {
	case Python2:
		return "python2"
	case Python3:
		return "python3"
	default:
		return "python"
	}
}

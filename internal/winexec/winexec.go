// Package winexec runs the external imaging and disk-management tools the
// rest of the code sequences. Everything that shells out goes through a
// Runner so tests can substitute a fake.
package winexec

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Runner executes one external tool invocation and returns its stdout.
// stdin, when non-empty, is fed to the process (diskpart takes its script
// that way).
type Runner interface {
	Run(name string, args []string, stdin string) ([]byte, error)
}

// Exec is the real Runner.
type Exec struct{}

func (Exec) Run(name string, args []string, stdin string) ([]byte, error) {
	logrus.Debugf("running %s %s", name, strings.Join(args, " "))

	cmd := exec.Command(name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdoutBuffer, stderrBuffer bytes.Buffer
	cmd.Stdout = &stdoutBuffer
	cmd.Stderr = &stderrBuffer

	err := cmd.Run()
	if err != nil {
		// tools like dism and bootsect report the reason on stdout as
		// often as on stderr, so include both; the underlying error is
		// kept unwrappable so callers can tell a tool's non-zero exit
		// from not being able to run it at all
		return stdoutBuffer.Bytes(), fmt.Errorf("running %s failed: %w%s%s",
			name, err, formatStream("stderr", stderrBuffer.String()), formatStream("stdout", stdoutBuffer.String()))
	}

	return stdoutBuffer.Bytes(), nil
}

func formatStream(name, content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	return fmt.Sprintf("\n%s:\n%s", name, content)
}

// Package sshd reads and edits the OpenSSH daemon configuration.
package sshd

import (
	"context"
	"fmt"
	"strings"

	"github.com/tpodg/serverprep/internal/host"
	"github.com/tpodg/serverprep/internal/task/taskutil"
)

const (
	DefaultConfigPath         = "/etc/ssh/sshd_config"
	KeyBanner                 = "Banner"
	KeyPermitRootLogin        = "PermitRootLogin"
	KeyPasswordAuthentication = "PasswordAuthentication"
	KeyKbdInteractiveAuth     = "KbdInteractiveAuthentication"
	ValueNo                   = "no"
)

// ReadConfig returns the content of the sshd configuration at path.
func ReadConfig(ctx context.Context, files host.FileSystem, path string) (string, error) {
	content, exists, err := files.ReadFile(ctx, path)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("sshd config %s not found", path)
	}
	return content, nil
}

// EffectiveValue returns the value sshd would use for key, as written.
func EffectiveValue(content, key string) (string, bool, error) {
	settings, err := taskutil.ParseKeyValueSettings(content)
	if err != nil {
		return "", false, err
	}
	value, ok := settings[strings.ToLower(key)]
	return value, ok, nil
}

// SetDirective returns content with key set to value. The first active line
// for key outside Match blocks is rewritten; without one, the directive is
// inserted before the first Match block or appended. Every other line is kept
// as is.
func SetDirective(content, key, value string) string {
	directive := key + " " + value
	lines := strings.SplitAfter(content, "\n")

	matchAt := -1
	for i, line := range lines {
		lineKey, _, ok := taskutil.SplitDirective(line)
		if !ok {
			continue
		}
		if strings.EqualFold(lineKey, "match") {
			matchAt = i
			break
		}
		if strings.EqualFold(lineKey, key) {
			lines[i] = directive + lineEnding(line)
			return strings.Join(lines, "")
		}
	}

	if matchAt >= 0 {
		inserted := make([]string, 0, len(lines)+1)
		inserted = append(inserted, lines[:matchAt]...)
		inserted = append(inserted, directive+"\n")
		inserted = append(inserted, lines[matchAt:]...)
		return strings.Join(inserted, "")
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + directive + "\n"
}

func lineEnding(line string) string {
	if strings.HasSuffix(line, "\n") {
		return "\n"
	}
	return ""
}

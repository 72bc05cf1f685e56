package taskutil

import (
	"bufio"
	"strings"
)

const maxScanTokenSize = 1024 * 1024

// ScanLines calls fn for every line of output.
func ScanLines(output string, fn func(string)) error {
	scanner := bufio.NewScanner(strings.NewReader(output))
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxScanTokenSize)
	for scanner.Scan() {
		fn(scanner.Text())
	}
	return scanner.Err()
}

// ParseKeyValueSettings parses "Key value" style configuration (sshd_config)
// into lower-cased keys and values as written. The first occurrence of a key wins and
// parsing stops at the first Match block, mirroring sshd.
func ParseKeyValueSettings(output string) (map[string]string, error) {
	settings := make(map[string]string)
	inMatch := false
	err := ScanLines(output, func(line string) {
		if inMatch {
			return
		}
		key, value, ok := SplitDirective(line)
		if !ok {
			return
		}
		key = strings.ToLower(key)
		if key == "match" {
			inMatch = true
			return
		}
		if _, exists := settings[key]; !exists {
			settings[key] = value
		}
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// SplitDirective splits an active configuration line into key and value.
// Comments, blank lines and trailing comments are ignored. Keys may be
// separated from values by whitespace or a single '='.
func SplitDirective(line string) (string, string, bool) {
	if idx := strings.Index(line, "#"); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", false
	}
	end := strings.IndexAny(line, " \t=")
	if end < 0 {
		return line, "", true
	}
	key := line[:end]
	rest := strings.TrimSpace(line[end:])
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "="))
	return key, rest, true
}

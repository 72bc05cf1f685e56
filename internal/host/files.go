package host

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
)

const missingFileSentinel = "__SERVERPREP_MISSING__"

type shellFiles struct {
	sh *shell
}

type fileScriptData struct {
	Path    string
	Content string
	Mode    string
	Marker  string
}

func (f *shellFiles) ReadFile(ctx context.Context, path string) (string, bool, error) {
	marker := missingFileSentinel + ":" + path
	script, err := renderScript("read_file", fileScriptData{Path: path, Marker: marker})
	if err != nil {
		return "", false, err
	}
	output, err := f.sh.runScript(ctx, script)
	if err != nil {
		return "", false, fmt.Errorf("read file %q: %w", path, err)
	}
	if strings.TrimSpace(output) == marker {
		return "", false, nil
	}
	return output, true, nil
}

func (f *shellFiles) WriteFile(ctx context.Context, path, content string, mode fs.FileMode) error {
	script, err := renderScript("write_file", fileScriptData{
		Path:    path,
		Content: content,
		Mode:    fileModeString(mode),
	})
	if err != nil {
		return &ConfigWriteError{Path: path, Err: err}
	}
	if output, err := f.sh.runScript(ctx, script); err != nil {
		return &ConfigWriteError{Path: path, Err: withOutput(err, output)}
	}
	return nil
}

func (f *shellFiles) AppendFile(ctx context.Context, path, content string) error {
	script, err := renderScript("append_file", fileScriptData{Path: path, Content: content})
	if err != nil {
		return &ConfigWriteError{Path: path, Err: err}
	}
	if output, err := f.sh.runScript(ctx, script); err != nil {
		return &ConfigWriteError{Path: path, Err: withOutput(err, output)}
	}
	return nil
}

func (f *shellFiles) Truncate(ctx context.Context, path string) error {
	script, err := renderScript("truncate_file", fileScriptData{Path: path})
	if err != nil {
		return &ConfigWriteError{Path: path, Err: err}
	}
	if output, err := f.sh.runScript(ctx, script); err != nil {
		return &ConfigWriteError{Path: path, Err: withOutput(err, output)}
	}
	return nil
}

func (f *shellFiles) HasContent(ctx context.Context, path string) (bool, error) {
	script, err := renderScript("has_content", fileScriptData{Path: path})
	if err != nil {
		return false, err
	}
	output, err := f.sh.runScript(ctx, script)
	if err != nil {
		return false, fmt.Errorf("stat file %q: %w", path, err)
	}
	switch answer := strings.TrimSpace(output); answer {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	default:
		return false, fmt.Errorf("stat file %q: unexpected output %q", path, answer)
	}
}

func fileModeString(mode fs.FileMode) string {
	return fmt.Sprintf("%o", mode.Perm())
}

// withOutput attaches trimmed command output to err.
func withOutput(err error, output string) error {
	output = strings.TrimSpace(output)
	if output == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, output)
}

package taskutil

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/tpodg/serverprep/internal/testutils/hostfake"
)

func TestParseKeyValueSettings(t *testing.T) {
	input := strings.Join([]string{
		"# PermitRootLogin yes",
		"Include /etc/ssh/sshd_config.d/*.conf",
		"PermitRootLogin No # managed",
		"permitrootlogin yes",
		"  \tPasswordAuthentication\tno",
		"Banner=/etc/issue.net",
		"Match User deploy",
		"  PasswordAuthentication yes",
	}, "\n")

	settings, err := ParseKeyValueSettings(input)
	if err != nil {
		t.Fatalf("ParseKeyValueSettings failed: %v", err)
	}

	cases := map[string]string{
		"permitrootlogin":        "No",
		"passwordauthentication": "no",
		"banner":                 "/etc/issue.net",
		"include":                "/etc/ssh/sshd_config.d/*.conf",
	}
	for key, want := range cases {
		if got := settings[key]; got != want {
			t.Errorf("%s: expected %q, got %q", key, want, got)
		}
	}
	if _, ok := settings["match"]; ok {
		t.Error("match block should not be recorded as a setting")
	}
}

func TestSplitDirective(t *testing.T) {
	cases := []struct {
		line  string
		key   string
		value string
		ok    bool
	}{
		{line: "", ok: false},
		{line: "   # comment", ok: false},
		{line: "Banner /etc/issue.net", key: "Banner", value: "/etc/issue.net", ok: true},
		{line: "MinProtocol = TLSv1.2", key: "MinProtocol", value: "TLSv1.2", ok: true},
		{line: "UsePAM", key: "UsePAM", ok: true},
		{line: "Port 22 # default", key: "Port", value: "22", ok: true},
	}
	for _, tc := range cases {
		key, value, ok := SplitDirective(tc.line)
		if ok != tc.ok || key != tc.key || value != tc.value {
			t.Errorf("SplitDirective(%q) = (%q, %q, %v), want (%q, %q, %v)", tc.line, key, value, ok, tc.key, tc.value, tc.ok)
		}
	}
}

func TestValidateIdentifier(t *testing.T) {
	for _, value := range []string{"curl", "lm-sensors", "libc6:amd64", "g++", "ssh.service"} {
		if err := ValidateIdentifier("package", value); err != nil {
			t.Errorf("expected %q to be valid: %v", value, err)
		}
	}
	for _, value := range []string{"", " curl", "curl;rm", "a b"} {
		if err := ValidateIdentifier("package", value); err == nil {
			t.Errorf("expected %q to be rejected", value)
		}
	}
}

func TestValidatePath(t *testing.T) {
	if err := ValidatePath("banner", "/etc/issue.net"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidatePath("banner", "etc/issue.net"); err == nil {
		t.Fatal("expected relative path to be rejected")
	}
	if err := ValidatePath("banner", "/etc/issue\n.net"); err == nil {
		t.Fatal("expected newline to be rejected")
	}
}

func TestWarnf(t *testing.T) {
	var buf bytes.Buffer
	old := warnOut
	warnOut = &buf
	t.Cleanup(func() { warnOut = old })

	Warnf("timezone %s is not set", "zone")
	if !strings.Contains(buf.String(), "WARN: timezone zone is not set") {
		t.Fatalf("unexpected warning output %q", buf.String())
	}
}

func TestFileDiffers(t *testing.T) {
	ctx := context.Background()
	fake := hostfake.New()
	fake.SetFile("/etc/issue.net", "hello\n")

	tests := []struct {
		path    string
		content string
		want    bool
	}{
		{path: "/etc/issue.net", content: "hello\n", want: false},
		{path: "/etc/issue.net", content: "hello", want: true},
		{path: "/etc/missing", content: "", want: true},
	}
	for _, tt := range tests {
		got, err := FileDiffers(ctx, fake, tt.path, tt.content)
		if err != nil {
			t.Fatalf("FileDiffers(%q) failed: %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("FileDiffers(%q, %q) = %v, want %v", tt.path, tt.content, got, tt.want)
		}
	}
}

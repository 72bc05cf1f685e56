package tls

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/tpodg/serverprep/internal/host"
	"github.com/tpodg/serverprep/internal/task"
	"github.com/tpodg/serverprep/internal/task/taskutil"
)

const TaskKey = "tls"

const (
	keyOpenSSLConf   = "openssl_conf"
	keySSLConf       = "ssl_conf"
	keySystemDefault = "system_default"
	keyMinProtocol   = "MinProtocol"
	keyCipherString  = "CipherString"

	defaultInitSection   = "openssl_init"
	defaultSSLSection    = "ssl_sect"
	defaultSystemSection = "system_default_sect"

	configMode = 0o644
)

// openssl.cnf is close enough to INI for ini.v1 once directives like
// .include and section-less assignments are tolerated.
var loadOptions = ini.LoadOptions{
	SkipUnrecognizableLines:  true,
	KeyValueDelimiters:       "=",
	SpaceBeforeInlineComment: true,
}

type Config struct {
	ConfigPath   string `yaml:"config_path"`
	MinProtocol  string `yaml:"min_protocol"`
	CipherString string `yaml:"cipher_string"`
}

func Spec() task.Spec {
	return task.SpecFor(TaskKey, "tls.yaml", false, buildTasks)
}

func buildTasks(cfg Config) ([]task.Task, error) {
	if err := taskutil.ValidatePath("openssl config", cfg.ConfigPath); err != nil {
		return nil, err
	}
	for kind, value := range map[string]string{"min_protocol": cfg.MinProtocol, "cipher_string": cfg.CipherString} {
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("tls %s cannot be empty", kind)
		}
		if err := taskutil.ValidateSingleLine("tls "+kind, value); err != nil {
			return nil, err
		}
		if strings.ContainsAny(value, "#;[]") {
			return nil, fmt.Errorf("tls %s %q contains a reserved character", kind, value)
		}
	}
	return []task.Task{&EnforceMinimumsTask{
		configPath:   cfg.ConfigPath,
		minProtocol:  strings.TrimSpace(cfg.MinProtocol),
		cipherString: strings.TrimSpace(cfg.CipherString),
	}}, nil
}

// EnforceMinimumsTask sets the system-wide OpenSSL protocol and cipher floor.
type EnforceMinimumsTask struct {
	configPath   string
	minProtocol  string
	cipherString string
}

func (t *EnforceMinimumsTask) Name() string {
	return "enforce tls minimums"
}

func (t *EnforceMinimumsTask) NeedsExecution(ctx context.Context, h *host.Host) (bool, error) {
	content, err := t.read(ctx, h)
	if err != nil {
		return false, err
	}
	sections, err := resolveSections(content)
	if err != nil {
		return false, err
	}
	return !t.satisfied(sections), nil
}

func (t *EnforceMinimumsTask) Execute(ctx context.Context, h *host.Host) error {
	content, err := t.read(ctx, h)
	if err != nil {
		return err
	}
	sections, err := resolveSections(content)
	if err != nil {
		return err
	}
	if t.satisfied(sections) {
		return nil
	}

	block := t.block(sections)
	if sections.hooked {
		return h.Files.AppendFile(ctx, t.configPath, block)
	}
	// openssl_conf must be set before the first section to take effect.
	updated := keyOpenSSLConf + " = " + sections.init + "\n" + content
	if !strings.HasSuffix(updated, "\n") {
		updated += "\n"
	}
	return h.Files.WriteFile(ctx, t.configPath, updated+block, configMode)
}

func (t *EnforceMinimumsTask) read(ctx context.Context, h *host.Host) (string, error) {
	content, exists, err := h.Files.ReadFile(ctx, t.configPath)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", &host.ConfigWriteError{Path: t.configPath, Err: fs.ErrNotExist}
	}
	return content, nil
}

func (t *EnforceMinimumsTask) satisfied(s opensslSections) bool {
	return s.hooked &&
		s.minProtocol == t.minProtocol &&
		s.cipherString == t.cipherString
}

func (t *EnforceMinimumsTask) block(s opensslSections) string {
	var b strings.Builder
	b.WriteString("\n# Added by serverprep\n")
	fmt.Fprintf(&b, "[%s]\n%s = %s\n\n", s.init, keySSLConf, s.ssl)
	fmt.Fprintf(&b, "[%s]\n%s = %s\n\n", s.ssl, keySystemDefault, s.system)
	fmt.Fprintf(&b, "[%s]\n%s = %s\n%s = %s\n", s.system, keyMinProtocol, t.minProtocol, keyCipherString, t.cipherString)
	return b.String()
}

// opensslSections follows the chain openssl_conf -> ssl_conf -> system_default
// and records the values found at its end. Missing links fall back to the
// names Debian uses.
type opensslSections struct {
	hooked       bool
	init         string
	ssl          string
	system       string
	minProtocol  string
	cipherString string
}

func resolveSections(content string) (opensslSections, error) {
	cfg, err := ini.LoadSources(loadOptions, []byte(content))
	if err != nil {
		return opensslSections{}, fmt.Errorf("parse openssl config: %w", err)
	}

	s := opensslSections{init: defaultInitSection, ssl: defaultSSLSection, system: defaultSystemSection}
	if name := cfg.Section(ini.DefaultSection).Key(keyOpenSSLConf).String(); name != "" {
		s.hooked = true
		s.init = name
	}
	if name := sectionKey(cfg, s.init, keySSLConf); name != "" {
		s.ssl = name
	}
	if name := sectionKey(cfg, s.ssl, keySystemDefault); name != "" {
		s.system = name
	}
	s.minProtocol = sectionKey(cfg, s.system, keyMinProtocol)
	s.cipherString = sectionKey(cfg, s.system, keyCipherString)
	return s, nil
}

// sectionKey looks key up in every section named section. OpenSSL allows
// "[ name ]" and reopening a section, and the last assignment wins.
func sectionKey(cfg *ini.File, section, key string) string {
	var value string
	for _, sec := range cfg.Sections() {
		if strings.TrimSpace(sec.Name()) != section || !sec.HasKey(key) {
			continue
		}
		value = strings.TrimSpace(sec.Key(key).String())
	}
	return value
}

package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/five82/uberlog/internal/probe"
)

// UartBackend streams logs from a serial device.
type UartBackend struct {
	Dev  string `yaml:"dev"`
	Baud int    `yaml:"baud"`
}

// RttBackend streams logs from RTT up-channel 0.
type RttBackend struct {
	ElfPath string `yaml:"elf_path"`
}

// Backend names where a target's logs come from. Exactly one is set.
type Backend struct {
	Uart *UartBackend `yaml:"uart,omitempty"`
	Rtt  *RttBackend  `yaml:"rtt,omitempty"`
}

// Target is one board, matched to a probe by the probe's serial number.
type Target struct {
	Name       string  `yaml:"name"`
	Processor  string  `yaml:"processor"`
	ProbeID    string  `yaml:"probe_id"`
	OpenOCD    string  `yaml:"openocd,omitempty"`
	RTTPort    int     `yaml:"rtt_port,omitempty"`
	ElfPath    string  `yaml:"elf_path,omitempty"`
	LogBackend Backend `yaml:"log_backend"`
}

// Config is the set of known targets.
type Config struct {
	Path    string
	Targets []Target

	// Problems holds one error per target entry that was left out because
	// it is invalid or reuses a probe_id.
	Problems []error
}

const (
	defaultConfigPath = "~/.config/uberlog/targets.yaml"
	defaultBaud       = 115200
	defaultOpenOCD    = "127.0.0.1:6666"
	defaultRTTPort    = 9090
)

// Load reads the targets file, returning an empty Config when it is missing.
// Only an unreadable or unparsable file is an error; bad target entries are
// skipped and reported in Problems.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{Path: resolved}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, errors.Wrap(err, "open targets")
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, errors.Wrap(err, "read targets")
	}

	var raw struct {
		Targets []Target `yaml:"targets"`
	}
	if err := yaml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, errors.Wrap(err, "parse targets")
	}

	seen := make(map[string]int, len(raw.Targets))
	for i := range raw.Targets {
		t := raw.Targets[i]
		if err := t.normalize(); err != nil {
			cfg.Problems = append(cfg.Problems, errors.Wrapf(err, "target %d", i))
			continue
		}
		if prev, dup := seen[t.ProbeID]; dup {
			cfg.Problems = append(cfg.Problems,
				errors.Errorf("target %d: probe_id %q already used by target %d", i, t.ProbeID, prev))
			continue
		}
		seen[t.ProbeID] = i
		cfg.Targets = append(cfg.Targets, t)
	}
	return cfg, nil
}

func (t *Target) normalize() error {
	t.Name = strings.TrimSpace(t.Name)
	t.Processor = strings.TrimSpace(t.Processor)
	t.ProbeID = strings.TrimSpace(t.ProbeID)
	if t.ProbeID == "" {
		return errors.New("probe_id is required")
	}
	if t.Name == "" {
		t.Name = t.ProbeID
	}

	t.OpenOCD = strings.TrimSpace(t.OpenOCD)
	if t.OpenOCD == "" {
		t.OpenOCD = defaultOpenOCD
	}
	if t.RTTPort <= 0 {
		t.RTTPort = defaultRTTPort
	}
	if t.ElfPath != "" {
		t.ElfPath = mustExpand(t.ElfPath)
	}

	b := &t.LogBackend
	switch {
	case b.Uart != nil && b.Rtt != nil:
		return errors.New("log_backend must set only one of uart or rtt")
	case b.Uart != nil:
		b.Uart.Dev = strings.TrimSpace(b.Uart.Dev)
		if b.Uart.Dev == "" {
			return errors.New("uart.dev is required")
		}
		if b.Uart.Baud <= 0 {
			b.Uart.Baud = defaultBaud
		}
	case b.Rtt != nil:
		if strings.TrimSpace(b.Rtt.ElfPath) == "" {
			return errors.New("rtt.elf_path is required")
		}
		b.Rtt.ElfPath = mustExpand(b.Rtt.ElfPath)
	default:
		return errors.New("log_backend must set uart or rtt")
	}
	return nil
}

// Lookup finds the target configured for a probe serial number.
func (c Config) Lookup(serial string) (Target, bool) {
	for _, t := range c.Targets {
		if t.ProbeID == serial {
			return t, true
		}
	}
	return Target{}, false
}

// Probe returns the debug session parameters for the target.
func (t Target) Probe() probe.Target {
	return probe.Target{
		Serial:    t.ProbeID,
		Processor: t.Processor,
		Endpoint:  t.OpenOCD,
		RTTPort:   t.RTTPort,
	}
}

// Firmware returns the ELF image used to reflash the target, if any.
func (t Target) Firmware() string {
	if t.LogBackend.Rtt != nil {
		return t.LogBackend.Rtt.ElfPath
	}
	return t.ElfPath
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home dir")
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

// ExpandPath resolves ~ and relative paths the same way the targets file does.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

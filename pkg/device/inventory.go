// Package device connects to RouterOS devices and runs the read-only
// commands the reclamation analysis needs.
package device

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/netreclaim/reclaim/pkg/util"
)

// Platform and transport names.
const (
	PlatformRouterOS = "mikrotik_routeros"

	// TransportSSH runs each command as an SSH exec request.
	TransportSSH = "ssh"
	// TransportScrapli drives an interactive CLI session through scrapligo
	// using its Go SSH client.
	TransportScrapli = "scrapli"
	// TransportSystem drives the session through the system ssh binary.
	TransportSystem = "system"
	// TransportTelnet drives the session over telnet.
	TransportTelnet = "telnet"
)

// DefaultTimeout bounds a single command.
const DefaultTimeout = 60 * time.Second

// Device is one inventory entry. The YAML keys match the scrapli connection
// arguments operators already keep in remote_node.yaml.
type Device struct {
	Name      string        `yaml:"name,omitempty" json:"name,omitempty"`
	Host      string        `yaml:"host" json:"host"`
	Port      int           `yaml:"port,omitempty" json:"port,omitempty"`
	Username  string        `yaml:"auth_username" json:"auth_username"`
	Password  string        `yaml:"auth_password,omitempty" json:"-"`
	StrictKey bool          `yaml:"auth_strict_key" json:"auth_strict_key"`
	Platform  string        `yaml:"platform,omitempty" json:"platform,omitempty"`
	Transport string        `yaml:"transport,omitempty" json:"transport,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// ID returns the name used for the device in logs, reports and storage.
func (d Device) ID() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Host
}

// Address returns host:port.
func (d Device) Address() string {
	port := d.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d", d.Host, port)
}

// normalize fills defaults and maps scrapli transport aliases from existing
// inventories onto the transports supported here.
func (d *Device) normalize() {
	if d.Port == 0 {
		d.Port = 22
	}
	if d.Platform == "" {
		d.Platform = PlatformRouterOS
	}
	if d.Timeout == 0 {
		d.Timeout = DefaultTimeout
	}
	switch strings.ToLower(d.Transport) {
	case "", "ssh2", "paramiko", "asyncssh", "standard", TransportScrapli:
		d.Transport = TransportScrapli
	case TransportSystem, "asyncssh_system":
		d.Transport = TransportSystem
	case TransportTelnet, "asynctelnet":
		d.Transport = TransportTelnet
	case TransportSSH, "exec":
		d.Transport = TransportSSH
	}
}

// Validate checks the fields every transport needs.
func (d Device) Validate() error {
	v := &util.ValidationBuilder{}
	v.Add(d.Host != "", "host is required")
	v.Add(d.Username != "", fmt.Sprintf("%s: auth_username is required", d.ID()))
	v.Add(d.Port > 0 && d.Port < 65536, fmt.Sprintf("%s: port %d out of range", d.ID(), d.Port))
	switch d.Transport {
	case TransportSSH, TransportScrapli, TransportSystem, TransportTelnet:
	default:
		v.AddErrorf("%s: unknown transport %q", d.ID(), d.Transport)
	}
	return v.Build()
}

// ParseInventory decodes a YAML list of devices, applies defaults and
// validates every entry.
func ParseInventory(data []byte) ([]Device, error) {
	var devices []Device
	if err := yaml.Unmarshal(data, &devices); err != nil {
		return nil, fmt.Errorf("parsing inventory: %w", err)
	}

	v := &util.ValidationBuilder{}
	seen := make(map[string]bool, len(devices))
	for i := range devices {
		devices[i].normalize()
		if err := devices[i].Validate(); err != nil {
			v.AddErrorf("device %d: %v", i, err)
			continue
		}
		id := devices[i].ID()
		if seen[id] {
			v.AddErrorf("device %d: duplicate name %q", i, id)
		}
		seen[id] = true
	}
	if err := v.Build(); err != nil {
		return nil, err
	}
	return devices, nil
}

// LoadInventory reads and parses the inventory file at path.
func LoadInventory(path string) ([]Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory: %w", err)
	}
	return ParseInventory(data)
}

// Find returns the device whose ID or host is name.
func Find(devices []Device, name string) (Device, error) {
	for _, d := range devices {
		if d.ID() == name || d.Host == name {
			return d, nil
		}
	}
	return Device{}, fmt.Errorf("device %q: %w", name, util.ErrNotFound)
}

// PromptPasswords asks on the terminal for the password of every device
// that has none. Devices sharing a username are asked once. It fails when
// input is not a terminal and a password is missing.
func PromptPasswords(devices []Device, in *os.File, out io.Writer) error {
	cache := make(map[string]string)
	for i := range devices {
		d := &devices[i]
		if d.Password != "" {
			continue
		}
		if pw, ok := cache[d.Username]; ok {
			d.Password = pw
			continue
		}
		fd := int(in.Fd())
		if !term.IsTerminal(fd) {
			return fmt.Errorf("%s: no password and stdin is not a terminal: %w", d.ID(), util.ErrInvalidArgument)
		}
		fmt.Fprintf(out, "Password for %s@%s: ", d.Username, d.Host)
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		d.Password = string(pw)
		cache[d.Username] = d.Password
	}
	return nil
}

package hosts

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hostpin/hostpin/pkg/log"
)

// DefaultPath is the system hosts file
const DefaultPath = "/etc/hosts"

// marker tags every line this daemon wrote
const marker = "AUTO GENERATED"

// File reconciles monitored hostnames into a hosts file. Lines whose
// hostname token belongs to a monitored variable are owned and replaceable;
// every other line, comments included, passes through untouched and in
// order.
type File struct {
	path   string
	now    func() time.Time
	logger zerolog.Logger
}

// NewFile binds a reconciler to the hosts file at path
func NewFile(path string) *File {
	return &File{
		path:   path,
		now:    time.Now,
		logger: log.WithComponent("hosts"),
	}
}

// Path returns the underlying file path
func (f *File) Path() string {
	return f.path
}

// Reconcile reads the file once, replaces the entries of every hostname
// whose on-disk address set differs from the given one, and writes the file
// back only when at least one set changed. Reordering with an unchanged set
// is not a change. Returns whether a write happened.
func (f *File) Reconcile(updates map[string][]string) (bool, error) {
	content, err := os.ReadFile(f.path)
	if err != nil {
		return false, fmt.Errorf("failed to read hosts file %s: %w", f.path, err)
	}

	lines, err := splitLines(content)
	if err != nil {
		return false, fmt.Errorf("failed to parse hosts file %s: %w", f.path, err)
	}

	// Hostnames are applied in sorted order so repeated passes produce
	// identical files
	hostnames := make([]string, 0, len(updates))
	for hostname := range updates {
		hostnames = append(hostnames, hostname)
	}
	sort.Strings(hostnames)

	changed := false
	for _, hostname := range hostnames {
		addrs := updates[hostname]
		if sameSet(addressesOf(lines, hostname), addrs) {
			continue
		}

		lines = dropOwned(lines, hostname)
		stamp := f.now().UTC().Format(time.RFC3339)
		for _, addr := range addrs {
			lines = append(lines, fmt.Sprintf("%s %s # %s: %s", addr, hostname, marker, stamp))
		}
		changed = true

		f.logger.Info().
			Str("hostname", hostname).
			Strs("addresses", addrs).
			Msg("hosts entry updated")
	}

	if !changed {
		return false, nil
	}

	rendered := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(f.path, []byte(rendered), 0644); err != nil {
		return false, fmt.Errorf("failed to write hosts file %s: %w", f.path, err)
	}
	return true, nil
}

// AddressesFor returns the addresses currently mapped to hostname in the
// file, in line order
func (f *File) AddressesFor(hostname string) ([]string, error) {
	content, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hosts file %s: %w", f.path, err)
	}
	lines, err := splitLines(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hosts file %s: %w", f.path, err)
	}
	return addressesOf(lines, hostname), nil
}

func splitLines(content []byte) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// hostnameOf returns the hostname token of a hosts line: the second
// whitespace-delimited field after any comment is stripped. Comment-only and
// malformed lines yield the empty string and are never owned.
func hostnameOf(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// addressOf returns the address token (first field) of a hosts line
func addressOf(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return ""
	}
	return fields[0]
}

func addressesOf(lines []string, hostname string) []string {
	var addrs []string
	for _, line := range lines {
		if hostnameOf(line) == hostname {
			addrs = append(addrs, addressOf(line))
		}
	}
	return addrs
}

func dropOwned(lines []string, hostname string) []string {
	kept := lines[:0]
	for _, line := range lines {
		if hostnameOf(line) == hostname {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

func sameSet(a, b []string) bool {
	as := toSet(a)
	bs := toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for s := range as {
		if _, ok := bs[s]; !ok {
			return false
		}
	}
	return true
}

func toSet(addrs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(addrs))
	for _, s := range addrs {
		set[s] = struct{}{}
	}
	return set
}

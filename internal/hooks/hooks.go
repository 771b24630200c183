// Package hooks implements the platform enumeration hooks for the `jail`
// and `ports` operations — opaque tree-returning hooks over the external
// build tool's own jail/ports listing. This package gives them a concrete,
// swappable Go shape so the daemon core stays testable without a real
// `poudriere` binary on the test host.
package hooks

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/System233/poudriered/internal/wire"
)

// JailLister returns the list of configured build jails.
type JailLister func() ([]string, error)

// PortsLister returns the configured ports trees as a name->path mapping.
type PortsLister func() (map[string]string, error)

// ExecJailLister shells out to `<binary> jail -l -q`, taking the first
// field of each non-empty line as a jail name.
func ExecJailLister(binary string) JailLister {
	return func() ([]string, error) {
		out, err := exec.Command(binary, "jail", "-l", "-q").Output()
		if err != nil {
			return nil, err
		}
		var jails []string
		for _, line := range strings.Split(string(bytes.TrimSpace(out)), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			jails = append(jails, strings.Fields(line)[0])
		}
		return jails, nil
	}
}

// ExecPortsLister shells out to `<binary> ports -l -q`, expecting
// "name path" per line.
func ExecPortsLister(binary string) PortsLister {
	return func() (map[string]string, error) {
		out, err := exec.Command(binary, "ports", "-l", "-q").Output()
		if err != nil {
			return nil, err
		}
		ports := map[string]string{}
		for _, line := range strings.Split(string(bytes.TrimSpace(out)), "\n") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			ports[fields[0]] = fields[1]
		}
		return ports, nil
	}
}

// JailNode converts a jail-name list into a wire.Node array, returning an
// empty array for a nil/empty list.
func JailNode(jails []string) wire.Node {
	nodes := make([]wire.Node, 0, len(jails))
	for _, j := range jails {
		nodes = append(nodes, wire.String(j))
	}
	return wire.Array(nodes...)
}

// PortsNode converts a ports name->path mapping into a wire.Node object,
// returning an empty object for a nil/empty map.
func PortsNode(ports map[string]string) wire.Node {
	obj := map[string]wire.Node{}
	for name, path := range ports {
		obj[name] = wire.String(path)
	}
	return wire.Object(obj)
}

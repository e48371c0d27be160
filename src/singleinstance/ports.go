package singleinstance

import (
	"fmt"
	"net"
	"os"
	"strconv"
)

const (
	defaultPortStart = 49500
	defaultPortEnd   = 49550
)

// PortRange is the inclusive span of loopback ports a resident may own. Only
// Start is ever bound; clients scan the whole span.
type PortRange struct {
	Start, End int
}

func (r PortRange) String() string { return fmt.Sprintf("%d-%d", r.Start, r.End) }

// addr is the loopback address of port.
func (r PortRange) addr(port int) string {
	return net.JoinHostPort(residentHost, strconv.Itoa(port))
}

// PortRangeFromEnv reads SINGLEINSTANCE_PORT_START and SINGLEINSTANCE_PORT_END.
// Unset or invalid values fall back to the defaults; the result is clamped to
// [1024, 65535] and swapped if reversed.
func PortRangeFromEnv() PortRange {
	r := PortRange{
		Start: envPort("SINGLEINSTANCE_PORT_START", defaultPortStart),
		End:   envPort("SINGLEINSTANCE_PORT_END", defaultPortEnd),
	}
	if r.Start < 1024 {
		r.Start = 1024
	}
	if r.End > 65535 {
		r.End = 65535
	}
	if r.End < r.Start {
		r.Start, r.End = r.End, r.Start
	}
	return r
}

func envPort(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

package singleinstance

import (
	"bufio"
	"context"
	"net"
	"time"
)

const defaultProbeTimeout = 300 * time.Millisecond

// DetectResidentPort returns the port of a resident that answers PING.
func DetectResidentPort(ctx context.Context) (int, bool) {
	return findResident(PortRangeFromEnv(), probeTimeout(ctx, defaultProbeTimeout))
}

// probeTimeout is the time left on ctx, or def when ctx has no deadline.
func probeTimeout(ctx context.Context, def time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return def
}

func findResident(r PortRange, timeout time.Duration) (int, bool) {
	for port := r.Start; port <= r.End; port++ {
		if ping(r.addr(port), timeout) {
			return port, true
		}
	}
	return 0, false
}

func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(pingRequest); err != nil {
		return false
	}
	if err := w.Flush(); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}

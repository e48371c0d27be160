package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) Send(ctx context.Context, action string) (bool, string, error) {
	timeout := probeTimeout(ctx, 2*time.Second)
	r := PortRangeFromEnv()
	port, ok := findResident(r, timeout)
	if !ok {
		return false, "", nil
	}
	outcome, err := deliver(r.addr(port), action, timeout)
	return true, outcome, err
}

func deliver(addr, action string, timeout time.Duration) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	// Delegated actions may wait on the naming dialog, so only the write is
	// bounded.
	_ = conn.SetWriteDeadline(time.Now().Add(timeout))

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(actionPrefix + action + "\n"); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}

	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		return "", err
	}
	body, _ := io.ReadAll(br)
	switch status {
	case successStatus:
		return strings.TrimSpace(string(body)), nil
	case errorStatus:
		return "", fmt.Errorf("%w: %s", ErrResidentRefused, strings.TrimSpace(string(body)))
	default:
		return "", fmt.Errorf("unexpected resident status %q", status)
	}
}

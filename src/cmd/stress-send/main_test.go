package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"screen-capper/src/singleinstance"
)

func TestNewRootCmdDefaults(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.n != 50 {
		t.Fatalf("Expected default n=50, got %d", opts.n)
	}
	if opts.action != "capture" {
		t.Fatalf("Expected default action=capture, got %q", opts.action)
	}
	if opts.deadline != 5*time.Second {
		t.Fatalf("Expected default deadline=5s, got %v", opts.deadline)
	}
}

func TestNewRootCmdCustomFlags(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--n", "3", "--action", "lock", "--deadline", "7s"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.n != 3 || opts.action != "lock" || opts.deadline != 7*time.Second {
		t.Fatalf("Unexpected options: %+v", *opts)
	}
}

// scriptedClient answers by call order: ok, refused, missing, failed, ...
type scriptedClient struct{ i int }

func (c scriptedClient) Send(ctx context.Context, action string) (bool, string, error) {
	switch c.i % 4 {
	case 0:
		return true, "saving x.png", nil
	case 1:
		return true, "", fmt.Errorf("%w: nope", singleinstance.ErrResidentRefused)
	case 2:
		return false, "", nil
	default:
		return false, "", errors.New("connection reset")
	}
}

func TestStressTallies(t *testing.T) {
	next := make(chan int, 8)
	for i := 0; i < 8; i++ {
		next <- i
	}
	newClient := func() singleinstance.Client { return scriptedClient{i: <-next} }

	tl, _ := stress(stressOptions{n: 8, action: "capture", deadline: time.Second}, newClient)
	if tl.ok != 2 || tl.refused != 2 || tl.missing != 2 || tl.failed != 2 {
		t.Fatalf("Unexpected tally: %+v", *tl)
	}

	var out bytes.Buffer
	_ = report(&out, 8, tl, time.Second)
	if !strings.Contains(out.String(), "launched=8 ok=2 refused=2 missing=2 err=2") {
		t.Fatalf("Unexpected report: %q", out.String())
	}
}

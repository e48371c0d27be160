package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screen-capper/src/singleinstance"
)

type stressOptions struct {
	n        int
	action   string
	deadline time.Duration
}

type tally struct {
	ok, refused, missing, failed int32
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-send",
		Short:         "Stress test action delegation to a running screen-capper",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			newClient := func() singleinstance.Client { return singleinstance.NewClient() }
			t, elapsed := stress(*opts, newClient)
			return report(cmd.OutOrStdout(), opts.n, t, elapsed)
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.action, "action", "capture", "action every client sends")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

func stress(opts stressOptions, newClient func() singleinstance.Client) (*tally, time.Duration) {
	var wg sync.WaitGroup
	t := &tally{}
	start := time.Now()
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			delegated, _, err := newClient().Send(ctx, opts.action)
			switch {
			case errors.Is(err, singleinstance.ErrResidentRefused):
				atomic.AddInt32(&t.refused, 1)
			case err != nil:
				atomic.AddInt32(&t.failed, 1)
			case delegated:
				atomic.AddInt32(&t.ok, 1)
			default:
				atomic.AddInt32(&t.missing, 1)
			}
		}()
	}
	wg.Wait()
	return t, time.Since(start)
}

func report(w io.Writer, n int, t *tally, elapsed time.Duration) error {
	fmt.Fprintf(w, "launched=%d ok=%d refused=%d missing=%d err=%d elapsed=%s\n", n, t.ok, t.refused, t.missing, t.failed, elapsed)
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	natsadapter "github.com/samirrijal/mietradar/internal/adapters/nats"
	"github.com/samirrijal/mietradar/internal/core/domain"
)

var (
	followDurable string
	followJournal string
)

var followCmd = &cobra.Command{
	Use:   "follow",
	Short: "Tail user observation events",
	Long: "Consumes observation events from JetStream and writes them as JSON lines to a journal. " +
		"The journal is an audit trail; it is never folded into the bulk partition.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.NATS.URL == "" {
			return errors.New("nats.url is required to follow events")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var out io.Writer = os.Stdout
		if followJournal != "" {
			f, err := os.OpenFile(followJournal, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer f.Close()
			out = f
		}

		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			return err
		}
		defer sub.Close()

		j := newJournal(out)
		if err := sub.SubscribeObservationEvents(ctx, followDurable, j.handle); err != nil {
			return err
		}
		slog.Info("following observation events", "durable", followDurable, "journal", followJournal)

		<-ctx.Done()
		slog.Info("follow stopped", "events", j.total())
		return nil
	},
}

func init() {
	followCmd.Flags().StringVar(&followDurable, "durable", "mietradar-follow", "JetStream durable consumer name")
	followCmd.Flags().StringVar(&followJournal, "journal", "", "append events to this file instead of stdout")
	rootCmd.AddCommand(followCmd)
}

// journal serializes events as JSON lines and counts them per type.
type journal struct {
	mu     sync.Mutex
	enc    *json.Encoder
	counts map[string]int
}

func newJournal(w io.Writer) *journal {
	return &journal{enc: json.NewEncoder(w), counts: make(map[string]int)}
}

func (j *journal) handle(ctx context.Context, event *domain.ObservationEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.enc.Encode(event); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	j.counts[event.Type]++

	attrs := []any{"type", event.Type, "category", event.Category, "id", event.ID}
	if event.Observation != nil && event.Observation.Attributed() {
		attrs = append(attrs, "neighborhood_id", event.Observation.NeighborhoodID)
	}
	slog.DebugContext(ctx, "observation event", attrs...)
	return nil
}

func (j *journal) total() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for _, c := range j.counts {
		n += c
	}
	return n
}

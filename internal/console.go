package internal

import (
	"context"
	"creatorstats/internal/services"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Console runs one-shot commands against the same store the server uses.
type Console struct {
	registry  *services.Registry
	scheduler services.SchedulerInterface
}

func NewConsole(registry *services.Registry, scheduler services.SchedulerInterface) *Console {
	return &Console{registry: registry, scheduler: scheduler}
}

// Collect runs one daily collection pass and prints how many records were added.
func (c *Console) Collect(ctx context.Context, w io.Writer) error {
	added := c.scheduler.RunOnce(ctx)
	_, err := fmt.Fprintf(w, "collected %d new daily record(s)\n", added)
	return err
}

// Status prints one line per platform with its connection and call budget state.
func (c *Console) Status(ctx context.Context, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLATFORM\tCONNECTED\tCALLS\tREMAINING\tCOOLDOWN\tLAST COLLECTION\tSTATUS")
	for _, svc := range c.registry.All() {
		status := svc.Fetcher.GetAPICallStatus(ctx)
		last := "never"
		if at, err := svc.Collector.LastCollection(); err == nil && !at.IsZero() {
			last = at.Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%t\t%d/%d\t%d\t%s\t%s\t%s\n",
			svc.Platform().Label(),
			svc.Fetcher.Connected(),
			status.DailyCalls, status.MaxCalls,
			status.RemainingCalls,
			status.CooldownRemaining.Round(time.Minute),
			last,
			status.Reason,
		)
	}
	return tw.Flush()
}

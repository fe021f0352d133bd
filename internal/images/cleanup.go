package images

import (
	"context"
	"log"
)

type CleanupStats struct {
	Deleted int
	Failed  int
}

// Cleaner drains the pending-deletion queue against Cloudinary. One
// failure doesn't stop the batch; the row is marked failed and the
// next one is tried.
type Cleaner struct {
	Queue  *DeletionQueue
	Client *Client
	Logger *log.Logger
}

func NewCleaner(queue *DeletionQueue, client *Client, logger *log.Logger) *Cleaner {
	if logger == nil {
		logger = log.Default()
	}
	return &Cleaner{Queue: queue, Client: client, Logger: logger}
}

func (c *Cleaner) Run(ctx context.Context, batchSize int) (CleanupStats, error) {
	var stats CleanupStats

	pending, err := c.Queue.ListPending(ctx, batchSize)
	if err != nil {
		return stats, err
	}
	if len(pending) == 0 {
		c.Logger.Println("no pending image deletions")
		return stats, nil
	}

	c.Logger.Printf("deleting %d pending images", len(pending))

	for _, d := range pending {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if err := c.Client.Destroy(ctx, d.PublicID); err != nil {
			c.Logger.Printf("delete failed: %s: %v", d.PublicID, err)
			if err := c.Queue.MarkFailed(ctx, d.ID, err.Error()); err != nil {
				c.Logger.Printf("mark failed: %v", err)
			}
			stats.Failed++
			continue
		}

		if err := c.Queue.MarkDeleted(ctx, d.ID); err != nil {
			c.Logger.Printf("mark deleted: %v", err)
		}
		c.Logger.Printf("deleted: %s", d.PublicID)
		stats.Deleted++
	}

	c.Logger.Printf("cleanup done: %d deleted, %d failed", stats.Deleted, stats.Failed)
	return stats, nil
}

package processor

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the number of concurrent platform calls
const DefaultConcurrency = 8

// StatusResult pairs an instance with its status
type StatusResult struct {
	Instance *Instance
	Status   Status
}

// StatusMany fetches the status of all instances concurrently, at most limit
// at a time. Results are in the order of instances. The first failure
// cancels the remaining calls and is returned.
func StatusMany(ctx context.Context, instances []*Instance, limit int) ([]StatusResult, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	results := make([]StatusResult, len(instances))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for idx, inst := range instances {
		g.Go(func() error {
			status, err := inst.Status(gctx)
			if err != nil {
				return err
			}
			results[idx] = StatusResult{Instance: inst, Status: status}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

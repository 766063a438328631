package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
)

type pageJob struct {
	index int
	image image.Image
}

type pageOutcome struct {
	index  int
	result *PageResult
	err    error
}

// ProcessImagesParallel processes page images concurrently and returns
// results in input order. Without ContinueOnError the first page error
// aborts the batch; with it the batch completes, failed pages come back nil
// and the failures are logged rather than returned.
func (p *Pipeline) ProcessImagesParallel(ctx context.Context, images []image.Image, documentType string) ([]*PageResult, error) {
	if len(images) == 0 {
		return nil, errors.New("no images provided")
	}

	workers := p.config.Workers
	if workers > len(images) {
		workers = len(images)
	}

	jobs := make(chan pageJob, len(images))
	outcomes := make(chan pageOutcome, len(images))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case job, ok := <-jobs:
					if !ok {
						return
					}
					result, err := p.ProcessImage(ctx, job.image, documentType)
					if result != nil {
						result.PageNumber = job.index + 1
					}
					outcomes <- pageOutcome{index: job.index, result: result, err: err}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, img := range images {
			select {
			case jobs <- pageJob{index: i, image: img}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	results := make([]*PageResult, len(images))
	var firstErr error
	for outcome := range outcomes {
		results[outcome.index] = outcome.result
		if outcome.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("page %d: %w", outcome.index+1, outcome.err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		if !p.config.ContinueOnError {
			return nil, firstErr
		}
		p.logger.Warn("batch completed with page failures", "error", firstErr)
	}
	return results, nil
}

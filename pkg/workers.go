package eventbuilder

import (
	"fmt"
)

type WorkerData struct {
	Shard  int
	Events [][]CompassData
}

type WorkerResult struct {
	Shard    int
	Columns  []Column
	Unmapped int
	Ignored  int
	Err      error
}

func worker(id int, jobs <-chan WorkerData, results chan<- WorkerResult, resolver ChannelResolver) {
	for job := range jobs {
		results <- buildShard(id, job, resolver)
	}
}

func buildShard(id int, job WorkerData, resolver ChannelResolver) (result WorkerResult) {
	result.Shard = job.Shard
	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("worker %d recovered from panic on shard %d: %v", id, job.Shard, r)
		}
	}()

	if configuration.Verbosity > 1 {
		message := fmt.Sprintf("Worker %d processing shard %d (%d events)", id, job.Shard, len(job.Events))
		logger.Info(message, "workers")
	}
	data := NewChannelData()
	for _, event := range job.Events {
		data.AppendEvent(event, resolver)
	}
	result.Unmapped = data.UnmappedHits()
	result.Ignored = data.IgnoredHits()
	result.Columns = data.Finalize()
	return result
}

// splitEvents cuts events into at most n contiguous chunks of near equal size.
func splitEvents(events [][]CompassData, n int) [][][]CompassData {
	if n < 1 {
		n = 1
	}
	if n > len(events) {
		n = len(events)
	}
	chunks := make([][][]CompassData, 0, n)
	start := 0
	for i := 0; i < n; i++ {
		size := len(events) / n
		if i < len(events)%n {
			size++
		}
		chunks = append(chunks, events[start:start+size])
		start += size
	}
	return chunks
}

type BuildStats struct {
	Rows     int
	Unmapped int
	Ignored  int
}

// BuildColumns aggregates events with nWorkers independent ChannelData
// instances and concatenates their columns. The row order matches the
// input order, so the result is the same as a serial pass.
func BuildColumns(events [][]CompassData, resolver ChannelResolver, nWorkers int) ([]Column, BuildStats, error) {
	chunks := splitEvents(events, nWorkers)
	if len(chunks) == 0 {
		return NewChannelData().Finalize(), BuildStats{}, nil
	}

	jobs := make(chan WorkerData, len(chunks))
	results := make(chan WorkerResult, len(chunks))

	for w := 1; w <= len(chunks); w++ {
		go worker(w, jobs, results, resolver)
	}
	for i, chunk := range chunks {
		jobs <- WorkerData{Shard: i, Events: chunk}
	}
	close(jobs)

	shards := make([][]Column, len(chunks))
	stats := BuildStats{}
	var firstErr error
	for range chunks {
		result := <-results
		if result.Err != nil {
			logger.Error(result.Err.Error())
			if firstErr == nil {
				firstErr = result.Err
			}
			continue
		}
		shards[result.Shard] = result.Columns
		stats.Unmapped += result.Unmapped
		stats.Ignored += result.Ignored
	}
	if firstErr != nil {
		return nil, stats, firstErr
	}

	columns, err := ConcatColumns(shards...)
	if err != nil {
		return nil, stats, err
	}
	if len(columns) > 0 {
		stats.Rows = len(columns[0].Values)
	}
	return columns, stats, nil
}

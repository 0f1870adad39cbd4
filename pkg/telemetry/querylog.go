package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

// QueryRecord captures the execution of one engine operation.
type QueryRecord struct {
	ID             string    `parquet:"id"`
	Timestamp      time.Time `parquet:"timestamp"`
	Operation      string    `parquet:"operation"` // search, paths, analytics
	Strategy       string    `parquet:"strategy"`  // strategy or algorithm name
	Query          string    `parquet:"query"`
	DurationMillis int64     `parquet:"duration_millis"`
	ResultCount    int       `parquet:"result_count"`
	Success        bool      `parquet:"success"`
}

// QueryLog buffers query records and writes them to Parquet in batches.
type QueryLog struct {
	outputDir string
	mu        sync.Mutex
	buffer    []QueryRecord
	batchSize int
}

// NewQueryLog creates the output directory and an empty log.
func NewQueryLog(outputDir string) (*QueryLog, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	return &QueryLog{
		outputDir: outputDir,
		batchSize: 256,
		buffer:    make([]QueryRecord, 0, 256),
	}, nil
}

// Record buffers one query record, assigning its ID and timestamp. A nil
// log records nothing, so callers need no guard.
func (q *QueryLog) Record(operation, strategy, query string, duration time.Duration, results int, success bool) {
	if q == nil {
		return
	}
	record := QueryRecord{
		ID:             uuid.New().String(),
		Timestamp:      time.Now().UTC(),
		Operation:      operation,
		Strategy:       strategy,
		Query:          query,
		DurationMillis: duration.Milliseconds(),
		ResultCount:    results,
		Success:        success,
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.buffer = append(q.buffer, record)
	if len(q.buffer) >= q.batchSize {
		_ = q.flush()
	}
}

// caller must hold the lock
func (q *QueryLog) flush() error {
	if len(q.buffer) == 0 {
		return nil
	}
	filename := fmt.Sprintf("queries_%s_%d.parquet",
		time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(q.outputDir, filename)

	if err := parquet.WriteFile(path, q.buffer); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write query telemetry file: %v\n", err)
		return err
	}
	q.buffer = q.buffer[:0]
	return nil
}

// Flush forces any buffered records to disk.
func (q *QueryLog) Flush() error {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.flush()
}

// Close flushes and releases the log.
func (q *QueryLog) Close() error {
	return q.Flush()
}

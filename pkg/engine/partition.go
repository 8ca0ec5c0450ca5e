package engine

import "fmt"

// Batch is an ordered, contiguous slice of the discovered file list.
type Batch struct {
	// Number is the 1-based batch index within the run.
	Number int
	Files  []string
}

// Partition splits files into batches of at most batchSize, preserving input
// order. The batches cover the input exactly: concatenating them reproduces
// files with no omissions and no duplicates. A batchSize of zero or less is a
// caller contract violation and is rejected explicitly.
func Partition(files []string, batchSize int) ([]Batch, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	var batches []Batch
	for start := 0; start < len(files); start += batchSize {
		end := start + batchSize
		if end > len(files) {
			end = len(files)
		}
		batches = append(batches, Batch{
			Number: len(batches) + 1,
			Files:  files[start:end],
		})
	}
	return batches, nil
}

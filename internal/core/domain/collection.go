package domain

import "fmt"

// DistanceMetric names the similarity function of a vector collection.
type DistanceMetric string

// Supported metrics.
const (
	// MetricCosine ranks by cosine similarity.
	MetricCosine DistanceMetric = "cosine"
)

// Collection describes a named vector collection.
type Collection struct {
	// Name is the collection identifier.
	Name string

	// Dimensions is the vector size every point must match.
	Dimensions int

	// Metric is the similarity function.
	Metric DistanceMetric
}

// Validate checks the collection definition.
func (c Collection) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: collection name is empty", ErrInvalidInput)
	}
	if c.Dimensions <= 0 {
		return fmt.Errorf("%w: collection dimensions must be positive", ErrInvalidInput)
	}
	if c.Metric != MetricCosine {
		return fmt.Errorf("%w: unsupported metric %q", ErrInvalidInput, c.Metric)
	}
	return nil
}

// IndexMode selects between incremental indexing and a full rebuild.
type IndexMode string

// Available index modes.
const (
	// IndexIncremental appends to the collection, creating it if absent.
	IndexIncremental IndexMode = "incremental"

	// IndexFullRebuild drops and recreates the collection first.
	IndexFullRebuild IndexMode = "full_rebuild"
)

// IsValid returns true if the mode is recognised.
func (m IndexMode) IsValid() bool {
	return m == IndexIncremental || m == IndexFullRebuild
}

// String returns the string representation.
func (m IndexMode) String() string {
	return string(m)
}

package metrics

import (
	"context"
	"time"

	"codeberg.org/mutker/r730fanctl/internal/policy"
	"codeberg.org/mutker/r730fanctl/internal/telemetry"
)

// Recorder is the append-only sink for sensor readings and fan control
// decisions.
type Recorder interface {
	RecordSensors(ctx context.Context, snapshot *telemetry.Snapshot) error
	RecordDecision(ctx context.Context, record *DecisionRecord) error
	Close() error
}

// Repository defines the interface for metrics data storage
type Repository interface {
	InsertSensors(ctx context.Context, snapshot *telemetry.Snapshot) error
	InsertDecision(ctx context.Context, record *DecisionRecord) error
	Close() error
}

// DecisionRecord is a fan control decision as applied at Timestamp.
type DecisionRecord struct {
	Timestamp time.Time
	Automatic bool
	// DutyCycle is zero for automatic decisions.
	DutyCycle int
}

// NewDecisionRecord builds a record for a decision taken at ts.
func NewDecisionRecord(ts time.Time, decision policy.Decision) *DecisionRecord {
	rec := &DecisionRecord{
		Timestamp: ts,
		Automatic: decision.IsAutomatic(),
	}
	if !rec.Automatic {
		rec.DutyCycle = decision.DutyCycle
	}
	return rec
}

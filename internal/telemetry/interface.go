package telemetry

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// CPUSockets is the number of generic "Temp" readings bound to CPUs.
	CPUSockets = 2
	// FanSlots is the number of chassis fans reported.
	FanSlots = 6
)

// Executor runs one BMC command and returns its standard output.
type Executor interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// Reading is a single sensor value. A missing or unreadable sensor is
// never zero; it has Valid == false.
type Reading struct {
	Int   int
	Valid bool
}

// Some returns a present reading.
func Some(v int) Reading {
	return Reading{Int: v, Valid: true}
}

// Value implements driver.Valuer so absent readings are stored as NULL.
func (r Reading) Value() (driver.Value, error) {
	if !r.Valid {
		return nil, nil
	}
	return int64(r.Int), nil
}

// MarshalJSON encodes an absent reading as null.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(r.Int)), nil
}

// MarshalYAML encodes an absent reading as null.
func (r Reading) MarshalYAML() (interface{}, error) {
	if !r.Valid {
		return nil, nil
	}
	return r.Int, nil
}

func (r Reading) String() string {
	if !r.Valid {
		return "na"
	}
	return strconv.Itoa(r.Int)
}

// Snapshot is one telemetry read. It is not modified after parsing.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Inlet     Reading   `json:"inlet_temp" yaml:"inlet_temp"`
	Exhaust   Reading   `json:"exhaust_temp" yaml:"exhaust_temp"`
	// CPU holds the first two "Temp" readings in report order.
	CPU [CPUSockets]Reading `json:"cpu_temps" yaml:"cpu_temps"`
	// Fans is indexed by physical slot minus one.
	Fans [FanSlots]Reading `json:"fan_rpms" yaml:"fan_rpms"`
}

// Fan1 is the reading of the first fan slot.
func (s *Snapshot) Fan1() Reading {
	return s.Fans[0]
}

// MaxCPU returns the hottest present CPU temperature.
func (s *Snapshot) MaxCPU() Reading {
	var hottest Reading
	for _, t := range s.CPU {
		if t.Valid && (!hottest.Valid || t.Int > hottest.Int) {
			hottest = t
		}
	}
	return hottest
}

func (s *Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Inlet: %sc Exhaust: %sc", s.Inlet, s.Exhaust)
	for i, t := range s.CPU {
		fmt.Fprintf(&b, " CPU%d: %sc", i+1, t)
	}
	fmt.Fprintf(&b, " Fans: ~%s rpm", s.Fan1())
	return b.String()
}

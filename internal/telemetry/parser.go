package telemetry

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"codeberg.org/mutker/r730fanctl/internal/errors"
)

const (
	fieldSeparator = "|"

	// Readings are clamped to a range every platform converts exactly.
	minReading = math.MinInt32
	maxReading = math.MaxInt32

	sensorInlet   = "Inlet Temp"
	sensorExhaust = "Exhaust Temp"
	sensorCPU     = "Temp"
)

// fanSensors maps "FanN RPM" labels to their slot index.
var fanSensors = func() map[string]int {
	m := make(map[string]int, FanSlots)
	for i := 0; i < FanSlots; i++ {
		m["Fan"+strconv.Itoa(i+1)+" RPM"] = i
	}
	return m
}()

// cpuBinder assigns generic "Temp" lines to CPU sockets by occurrence:
// the first line is CPU1, the second CPU2, later ones are dropped. The
// report never names the socket, so order is the only signal.
type cpuBinder struct {
	seen int
}

func (b *cpuBinder) bind(s *Snapshot, r Reading) {
	if b.seen >= CPUSockets {
		return
	}
	s.CPU[b.seen] = r
	b.seen++
}

// Parse reads `ipmitool sensor` output into a Snapshot. Unrecognised sensor
// names are ignored. A value that is not a number (ipmitool prints "na")
// leaves the reading absent. A non-blank line without a field separator
// fails the whole parse.
func Parse(r io.Reader) (*Snapshot, error) {
	errFactory := errors.New()
	snapshot := &Snapshot{}
	cpus := cpuBinder{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, fieldSeparator)
		if len(fields) < 2 {
			return nil, errFactory.WithData(ErrMalformedLine, struct {
				Line int
				Text string
			}{
				Line: lineNo,
				Text: line,
			})
		}

		name := strings.TrimSpace(fields[0])
		reading := parseValue(fields[1])

		switch name {
		case sensorInlet:
			snapshot.Inlet = reading
		case sensorExhaust:
			snapshot.Exhaust = reading
		case sensorCPU:
			cpus.bind(snapshot, reading)
		default:
			if slot, ok := fanSensors[name]; ok {
				snapshot.Fans[slot] = reading
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errFactory.Wrap(ErrMalformedLine, err)
	}

	return snapshot, nil
}

// parseValue truncates the numeric value toward zero. Values above
// maxReading, +Inf included, saturate so they still trip every ceiling.
// NaN and values below minReading are absent.
func parseValue(field string) Reading {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil || math.IsNaN(v) || v < minReading {
		return Reading{}
	}
	if v > maxReading {
		return Some(maxReading)
	}
	return Some(int(v))
}

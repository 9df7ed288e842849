package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"codeberg.org/mutker/r730fanctl/internal/errors"
)

const r730Report = `Fan1 RPM         | 3000.000   | RPM        | ok
Fan2 RPM         | 3120.000   | RPM        | ok
Inlet Temp       | 21.000     | degrees C  | ok
Exhaust Temp     | 30.000     | degrees C  | ok
Temp             | 43.000     | degrees C  | ok
Temp             | 44.000     | degrees C  | ok
Current 1        | na         | Amps       | na
`

// fakeBMC is an ipmitool stand-in that logs its arguments and answers the
// sensor query from a file.
type fakeBMC struct {
	dir    string
	config string
}

func newFakeBMC(t *testing.T, sensorExit int) *fakeBMC {
	t.Helper()
	dir := t.TempDir()
	f := &fakeBMC{dir: dir}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "report"), []byte(r730Report), 0o600))
	script := fmt.Sprintf(`#!/bin/sh
echo "$@" >> %q
if [ "$1" = "sensor" ]; then
	cat %q
	exit %d
fi
`, filepath.Join(dir, "calls"), filepath.Join(dir, "report"), sensorExit)
	tool := filepath.Join(dir, "ipmitool")
	require.NoError(t, os.WriteFile(tool, []byte(script), 0o755))

	f.config = filepath.Join(dir, "r730fanctl.toml")
	require.NoError(t, os.WriteFile(f.config, []byte(fmt.Sprintf(`
pid_file = %q
settle_delay = "0s"

[[curve]]
temperature = 42
duty_cycle = 20

[[curve]]
temperature = 43
duty_cycle = 25

[[curve]]
temperature = 44
duty_cycle = 30

[[curve]]
temperature = 45
duty_cycle = 35

[ipmi]
path = %q
`, filepath.Join(dir, "r730fanctl.pid"), tool)), 0o600))

	return f
}

func (f *fakeBMC) rawCalls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, "calls"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)

	var raw []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if strings.HasPrefix(line, "raw ") {
			raw = append(raw, line)
		}
	}
	return raw
}

func (f *fakeBMC) execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"--config", f.config, "--log", filepath.Join(f.dir, "r730fanctl.log")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRunSetsDutyCycle(t *testing.T) {
	bmc := newFakeBMC(t, 0)
	db := filepath.Join(bmc.dir, "metrics.db")

	_, err := bmc.execute("--database", db)
	require.NoError(t, err)

	assert.Equal(t, []string{"raw 0x30 0x30 0x01 0x00", "raw 0x30 0x30 0x02 0xff 0x1e"}, bmc.rawCalls(t))
	assert.FileExists(t, db)
	assert.NoFileExists(t, filepath.Join(bmc.dir, "r730fanctl.pid"), "pid file is released")
}

func TestRunSubcommand(t *testing.T) {
	bmc := newFakeBMC(t, 0)

	_, err := bmc.execute("run")
	require.NoError(t, err)
	assert.Len(t, bmc.rawCalls(t), 2)
}

func TestRunFailsafeOnTelemetryError(t *testing.T) {
	bmc := newFakeBMC(t, 1)

	_, err := bmc.execute()
	require.Error(t, err)
	assert.Equal(t, errors.ErrTelemetryUnavailable, errors.CodeOf(err))
	assert.Equal(t, []string{"raw 0x30 0x30 0x01 0x01"}, bmc.rawCalls(t))

	logData, err := os.ReadFile(filepath.Join(bmc.dir, "r730fanctl.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "Turning on auto fan control")
}

func TestRunMonitorLeavesFansAlone(t *testing.T) {
	bmc := newFakeBMC(t, 0)

	_, err := bmc.execute("--monitor")
	require.NoError(t, err)
	assert.Empty(t, bmc.rawCalls(t))
}

func TestRunRefusesConcurrentInstance(t *testing.T) {
	bmc := newFakeBMC(t, 0)
	pidFile := filepath.Join(bmc.dir, "r730fanctl.pid")
	require.NoError(t, os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getppid())), 0o600))

	_, err := bmc.execute()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrAlreadyRunning))
	assert.Empty(t, bmc.rawCalls(t), "the running instance owns the fans")
	assert.FileExists(t, pidFile)
}

func TestSensorsText(t *testing.T) {
	bmc := newFakeBMC(t, 0)

	out, err := bmc.execute("sensors")
	require.NoError(t, err)
	assert.Equal(t, "Inlet: 21c Exhaust: 30c CPU1: 43c CPU2: 44c Fans: ~3000 rpm\n", out)
	assert.Empty(t, bmc.rawCalls(t))
}

func TestSensorsJSON(t *testing.T) {
	bmc := newFakeBMC(t, 0)

	out, err := bmc.execute("sensors", "--format", "json")
	require.NoError(t, err)

	var decoded struct {
		Exhaust *int   `json:"exhaust_temp"`
		CPU     []int  `json:"cpu_temps"`
		Fans    []*int `json:"fan_rpms"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.NotNil(t, decoded.Exhaust)
	assert.Equal(t, 30, *decoded.Exhaust)
	assert.Equal(t, []int{43, 44}, decoded.CPU)
	require.Len(t, decoded.Fans, 6)
	assert.Equal(t, 3120, *decoded.Fans[1])
	assert.Nil(t, decoded.Fans[2])
}

func TestSensorsYAML(t *testing.T) {
	bmc := newFakeBMC(t, 0)

	out, err := bmc.execute("sensors", "-f", "yaml")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 21, decoded["inlet_temp"])
	assert.Equal(t, []any{43, 44}, decoded["cpu_temps"])
}

func TestSensorsRejectsUnknownFormat(t *testing.T) {
	bmc := newFakeBMC(t, 0)

	_, err := bmc.execute("sensors", "--format", "xml")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidArgument))
	assert.NoFileExists(t, filepath.Join(bmc.dir, "calls"))
}

func TestAuto(t *testing.T) {
	bmc := newFakeBMC(t, 0)

	_, err := bmc.execute("auto")
	require.NoError(t, err)
	assert.Equal(t, []string{"raw 0x30 0x30 0x01 0x01"}, bmc.rawCalls(t))
}

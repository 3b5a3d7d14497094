package observe

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"endfind/estimator"
)

var (
	// ErrNotCommand is returned for text that is not a slash command.
	ErrNotCommand = errors.New("not a command")
	// ErrFieldCount is returned when a command does not carry exactly
	// x, y, z, yaw and pitch.
	ErrFieldCount = errors.New("expected 5 numeric fields")
)

// ParseCommand extracts an observation from the teleport command the game puts
// on the clipboard, e.g.
//
//	/execute in minecraft:overworld run tp @s 12.50 64.00 -30.25 -179.9 -31.2
//
// Only digits, '.', '-' and spaces are kept; the remaining tokens must be
// exactly five numbers. Yaw is folded into [-180, 180].
func ParseCommand(line string) (estimator.Observation, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return estimator.Observation{}, ErrNotCommand
	}

	filtered := strings.Map(func(r rune) rune {
		if unicode.IsNumber(r) || r == ' ' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, line)

	nums := make([]float64, 0, 5)
	for _, part := range strings.Split(strings.TrimSpace(filtered), " ") {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			continue
		}
		nums = append(nums, v)
	}
	if len(nums) != 5 {
		return estimator.Observation{}, fmt.Errorf("%w, got %d", ErrFieldCount, len(nums))
	}

	return estimator.Observation{
		X:     nums[0],
		Y:     nums[1],
		Z:     nums[2],
		Yaw:   NormalizeYaw(nums[3]),
		Pitch: nums[4],
	}, nil
}

// NormalizeYaw folds a yaw in degrees into [-180, 180].
func NormalizeYaw(deg float64) float64 {
	n := math.Mod(deg, 360.0)
	if n > 180.0 {
		return n - 360.0
	}
	if n < -180.0 {
		return n + 360.0
	}
	return n
}

// ReadAll parses one command per line. Blank lines and lines starting with '#'
// are skipped; duplicates are dropped keeping the first occurrence.
func ReadAll(r io.Reader) ([]estimator.Observation, error) {
	set := NewSet()
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		obs, err := ParseCommand(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		set.Add(obs)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read observations: %w", err)
	}
	return set.Observations(), nil
}

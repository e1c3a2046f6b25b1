package arsenal

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every default the extractor falls back on when a statistic
// is missing or unusable. Distances are in feet, angles in degrees.
type Config struct {
	// DefaultExtension is used when a pitch has no measured extension
	DefaultExtension float64 `yaml:"default_extension" json:"default_extension"`

	// MinReleaseHeight rejects measured release heights at or below it
	MinReleaseHeight float64 `yaml:"min_release_height" json:"min_release_height"`

	// DefaultReleaseSide is the lateral release distance used when only
	// the release height was measured (mirrored for left-handers)
	DefaultReleaseSide float64 `yaml:"default_release_side" json:"default_release_side"`

	// LeftyBreakThreshold classifies a pitcher as left-handed from fastball
	// horizontal break (inches) when no release side was measured
	LeftyBreakThreshold float64 `yaml:"lefty_break_threshold" json:"lefty_break_threshold"`

	// Shoulder model used to synthesize a release point from an arm angle,
	// and to derive the displayed arm angle. Right-handed side; mirrored.
	ShoulderX float64 `yaml:"shoulder_x" json:"shoulder_x"`
	ShoulderY float64 `yaml:"shoulder_y" json:"shoulder_y"`
	ArmLength float64 `yaml:"arm_length" json:"arm_length"`

	// DefaultArmAngle is used when the record carries no arm angle
	DefaultArmAngle float64 `yaml:"default_arm_angle" json:"default_arm_angle"`
}

// DefaultConfig returns the extraction defaults
func DefaultConfig() Config {
	return Config{
		DefaultExtension:    6.0,
		MinReleaseHeight:    1.0,
		DefaultReleaseSide:  2.0,
		LeftyBreakThreshold: 2.0,
		ShoulderX:           1.0,
		ShoulderY:           5.8,
		ArmLength:           1.25,
		DefaultArmAngle:     35.0,
	}
}

// Validate checks that the config describes a usable geometry
func (c Config) Validate() error {
	if c.DefaultExtension <= 0 || c.DefaultExtension >= 60.5 {
		return fmt.Errorf("default_extension must be between 0 and 60.5, got %v", c.DefaultExtension)
	}
	if c.MinReleaseHeight < 0 {
		return fmt.Errorf("min_release_height must not be negative, got %v", c.MinReleaseHeight)
	}
	if c.ArmLength <= 0 {
		return fmt.Errorf("arm_length must be positive, got %v", c.ArmLength)
	}
	if c.ShoulderY <= 0 {
		return fmt.Errorf("shoulder_y must be positive, got %v", c.ShoulderY)
	}
	if c.DefaultArmAngle <= -90 || c.DefaultArmAngle > 90 {
		return fmt.Errorf("default_arm_angle must be in (-90, 90], got %v", c.DefaultArmAngle)
	}
	return nil
}

// LoadConfig reads a YAML config file. Keys left out of the file keep their
// DefaultConfig values; unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read extraction config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML config document over DefaultConfig
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse extraction config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid extraction config: %w", err)
	}
	return cfg, nil
}

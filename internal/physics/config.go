package physics

import "fmt"

// Config holds the knobs the input layer supplies to a World.
type Config struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Restitution    float64 `json:"restitution"`
	GravityEnabled bool    `json:"gravity_enabled"`
	Gravity        float64 `json:"gravity"`

	MaxLinearSpeed  float64 `json:"max_linear_speed"`
	MaxAngularSpeed float64 `json:"max_angular_speed"`

	// Random polygon shape
	Radius   float64 `json:"radius"`
	Noise    float64 `json:"noise"`
	MinSides int     `json:"min_sides"`
	MaxSides int     `json:"max_sides"`

	// Balls
	BallSpeed       float64 `json:"ball_speed"`
	BallSquish      float64 `json:"ball_squish"`
	BallFixedRadius bool    `json:"ball_fixed_radius"`
}

// DefaultConfig mirrors the values the browser demos shipped with.
func DefaultConfig() Config {
	return Config{
		Width:           1280,
		Height:          720,
		Restitution:     1,
		Gravity:         0.1,
		MaxLinearSpeed:  4,
		MaxAngularSpeed: 0.05,
		Radius:          100,
		Noise:           100,
		MinSides:        3,
		MaxSides:        7,
		BallSpeed:       5,
		BallSquish:      1,
		BallFixedRadius: true,
	}
}

// Validate rejects configurations the integrator cannot run with.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("arena must have positive size, got %vx%v", c.Width, c.Height)
	}
	if c.Restitution < 0 || c.Restitution > 1 {
		return fmt.Errorf("restitution must be between 0 and 1, got %v", c.Restitution)
	}
	if c.MaxLinearSpeed < 0 || c.MaxAngularSpeed < 0 {
		return fmt.Errorf("velocity bounds cannot be negative")
	}
	if c.Radius <= 0 {
		return fmt.Errorf("radius must be positive, got %v", c.Radius)
	}
	if c.Noise < 0 {
		return fmt.Errorf("noise cannot be negative")
	}
	if c.MinSides < 3 || c.MaxSides < c.MinSides {
		return fmt.Errorf("sides must satisfy 3 <= min <= max, got %d..%d", c.MinSides, c.MaxSides)
	}
	return nil
}

// gravity returns the per-tick vertical increment, zero when disabled.
func (c Config) gravity() float64 {
	if !c.GravityEnabled {
		return 0
	}
	return c.Gravity
}

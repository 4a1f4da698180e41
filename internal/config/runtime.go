package config

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrUnknownRuntimeKey = errors.New("unknown runtime config key")

// RuntimeKeys lists the settings operators may change while the server runs,
// with the value type each one expects.
var RuntimeKeys = map[string]string{
	"default_shape_count":  "int",
	"max_scenes":           "int",
	"max_shapes_per_scene": "int",
	"restitution":          "float",
	"gravity_enabled":      "bool",
	"gravity":              "float",
	"max_linear_speed":     "float",
	"max_angular_speed":    "float",
	"polygon_radius":       "float",
	"polygon_noise":        "float",
	"polygon_min_sides":    "int",
	"polygon_max_sides":    "int",
	"ball_speed":           "float",
	"ball_squish":          "float",
}

// SetRuntimeValue parses value according to the key's type and stores it.
func (c *Config) SetRuntimeValue(key, value string) error {
	valueType, ok := RuntimeKeys[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRuntimeKey, key)
	}

	var (
		i   int
		f   float64
		b   bool
		err error
	)
	switch valueType {
	case "int":
		i, err = strconv.Atoi(value)
	case "float":
		f, err = strconv.ParseFloat(value, 64)
	case "bool":
		b, err = strconv.ParseBool(value)
	}
	if err != nil {
		return fmt.Errorf("invalid %s value for %s: %q", valueType, key, value)
	}

	switch key {
	case "default_shape_count":
		c.DefaultShapeCount = i
	case "max_scenes":
		c.MaxScenes = i
	case "max_shapes_per_scene":
		c.MaxShapesPerScene = i
	case "restitution":
		c.Restitution = f
	case "gravity_enabled":
		c.GravityEnabled = b
	case "gravity":
		c.Gravity = f
	case "max_linear_speed":
		c.MaxLinearSpeed = f
	case "max_angular_speed":
		c.MaxAngularSpeed = f
	case "polygon_radius":
		c.PolygonRadius = f
	case "polygon_noise":
		c.PolygonNoise = f
	case "polygon_min_sides":
		c.PolygonMinSides = i
	case "polygon_max_sides":
		c.PolygonMaxSides = i
	case "ball_speed":
		c.BallSpeed = f
	case "ball_squish":
		c.BallSquish = f
	}
	return nil
}

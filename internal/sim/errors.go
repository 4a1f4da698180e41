package sim

import "errors"

var (
	ErrSceneNotFound  = errors.New("scene not found")
	ErrSceneFull      = errors.New("scene has reached its shape limit")
	ErrTooManyScenes  = errors.New("scene limit reached")
	ErrInvalidRequest = errors.New("invalid scene request")
)

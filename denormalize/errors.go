package denormalize

import "errors"

var (
	// ErrCollaboratorNotRegistered is returned when hits reference a model type
	// with no registered collaborator.
	ErrCollaboratorNotRegistered = errors.New("no collaborator registered for model type")

	// ErrCollaboratorRequired is returned when registering a nil collaborator.
	ErrCollaboratorRequired = errors.New("collaborator required")

	// ErrModelTypeRequired is returned when registering a collaborator without a model type.
	ErrModelTypeRequired = errors.New("model type required")
)

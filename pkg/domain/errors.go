package domain

import "errors"

// ErrUnknownGraph is returned when a graph ID cannot be resolved by the content registry.
var ErrUnknownGraph = errors.New("unknown dialogue graph")

// ErrUnknownStage is returned when a stage ID does not exist in the active graph.
var ErrUnknownStage = errors.New("unknown stage")

// ErrUnknownOption is returned when an option ID is not offered by the current stage.
var ErrUnknownOption = errors.New("unknown option")

// ErrUnknownMentor is returned when a mentor ID is not present in the directory.
var ErrUnknownMentor = errors.New("unknown mentor")

// ErrUnknownAction is returned when a strategic action kind has no handler.
var ErrUnknownAction = errors.New("unknown strategic action")

// ErrNoActiveDialogue is returned by operations that require an active session.
var ErrNoActiveDialogue = errors.New("no active dialogue")

// ErrOptionLocked is returned when a gated option is selected before its star is active.
var ErrOptionLocked = errors.New("option is locked")

// ErrInvalidArgument is returned when a required parameter is empty.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrSnapshotNotFound is returned when a save slot cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrHandlerFault is matched by errors from a strategic action handler that failed or panicked.
var ErrHandlerFault = errors.New("strategic action handler failed")

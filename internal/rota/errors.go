package rota

import "errors"

var (
	ErrNothingToCopy       = errors.New("no shifts on this day to copy")
	ErrEmptyWeek           = errors.New("no shifts in this week to copy")
	ErrCutoffRequired      = errors.New("an end date is required for a custom repeat")
	ErrCutoffNotAfterShift = errors.New("end date must be after shift date")
	ErrUnknownPattern      = errors.New("unknown repeat pattern")
	ErrAlreadyAssigned     = errors.New("shift is already assigned to this user")
)

package entity

import "errors"

var (
	ErrSensorDisabled  = errors.New("camera is disabled")
	ErrNoTarget        = errors.New("no defect in sight")
	ErrAlreadyScanned  = errors.New("defect is already scanned")
	ErrCaptureFailed   = errors.New("still capture failed")
	ErrEmptyRoster     = errors.New("roster is empty")
	ErrSessionFinished = errors.New("session is finished")
	ErrUnknownDefect   = errors.New("defect is not in roster")
)

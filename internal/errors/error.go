package errors

import "errors"

var (
	ErrInvalidBoardSize   = errors.New("board width and height must be positive")
	ErrInvalidDisplaySize = errors.New("display image width and height must be positive")
	ErrResourceInUse      = errors.New("board geometry is locked while camera streams are attached")
	ErrInvalidProfileName = errors.New("profile name contains invalid characters")
	ErrProfileNotFound    = errors.New("profile does not exist")
	ErrNoGame             = errors.New("no game is in progress")
	ErrNoReference        = errors.New("no reference image has been captured")
	ErrControlHeld        = errors.New("display control is already held by another client")
	ErrCameraUnavailable  = errors.New("camera device is unavailable")
)

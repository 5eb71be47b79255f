package services

import "errors"

// Shared errors used across services and the HTTP mapping layer.
var (
	// Generic not-found
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business-rule errors
	ErrValidationFailed   = errors.New("validation failed")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Roster save rejections, checked in this order
	ErrRoundInvalid        = errors.New("round must be between 1 and 3")
	ErrRoundNotLockable    = errors.New("round has no pick deadline configured")
	ErrRoundLocked         = errors.New("round is locked, the pick deadline has passed")
	ErrRosterSubmitted     = errors.New("roster has already been submitted")
	ErrSalaryCapExceeded   = errors.New("roster exceeds the salary cap")
	ErrTeamNotQualified    = errors.New("selected player's team is not qualified for this round")
	ErrPlayerNotSelectable = errors.New("selected player does not exist or is inactive")

	// Roster submit rejections
	ErrRosterIncomplete = errors.New("roster needs exactly 3 forwards, 2 defensemen and 1 goaltender per conference")
	ErrStarsInvalid     = errors.New("roster needs exactly 3 stars, one per role")

	// Qualification administration
	ErrQualificationCount = errors.New("wrong number of qualified teams for this round")

	// Sync orchestration
	ErrSyncAlreadyRunning = errors.New("a stats sync is already running")

	// Conflicts
	ErrUserEmailConflict = errors.New("email address is already in use")
	ErrTeamConflict      = errors.New("team with this abbreviation already exists")
	ErrPlayerConflict    = errors.New("player with this external id already exists")

	// Authentication and authorization
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Entity-specific not-found errors
	ErrUserNotFound    = errors.New("user not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrTeamNotFound    = errors.New("team not found")
	ErrRoundNotFound   = errors.New("round not found")
	ErrRosterNotFound  = errors.New("roster not found")
	ErrSyncLogNotFound = errors.New("sync log not found")
)

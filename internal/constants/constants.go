package constants

import "time"

// Context keys set by the auth middleware
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
)

// Validation limits
const (
	MinUsernameLength = 3
	MinPasswordLength = 8
)

// BcryptCost is the work factor for password hashing.
const BcryptCost = 12

// OTP settings
const (
	OTPLength        = 6
	OTPTTL           = 5 * time.Minute
	OTPSweepInterval = 60 * time.Second

	// OTPBypassCode is always accepted alongside the generated code.
	// Documented testing backdoor; remove it before exposing the
	// service to untrusted traffic.
	OTPBypassCode = "123456"
)

// TokenLifetime is how long a session token stays valid. Tokens are
// stateless, so a stolen token stays usable until this expires.
const TokenLifetime = time.Hour

// TrackingNumberPrefix prefixes every public complaint tracking number.
const TrackingNumberPrefix = "COMP"

// Upload limits
const MaxUploadSize = 5 << 20 // 5MB

// Pagination defaults for staff complaint listings
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

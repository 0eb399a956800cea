package lot

import ierrors "github.com/jrsteele09/go-bidagri-client/internal/errors"

var (
	// ErrUnauthenticatedWrite is returned by Add when no user is signed in
	// and anonymous staging is off
	ErrUnauthenticatedWrite = ierrors.ErrUnauthenticatedWrite
	// ErrOwnerMismatch is returned when an operation names an owner other
	// than the active session's subject
	ErrOwnerMismatch = ierrors.ErrOwnerMismatch
	// ErrUnknownPriceField is returned by Total for a field products don't carry
	ErrUnknownPriceField = ierrors.ErrUnknownPriceField
	// ErrStorageCorrupt is logged when a stored collection cannot be parsed
	ErrStorageCorrupt = ierrors.ErrStorageCorrupt
)

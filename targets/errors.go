package targets

import (
	"errors"
	"fmt"
)

var (
	// ErrAssetLoad matches every AssetLoadError.
	ErrAssetLoad = errors.New("targets: asset load failed")
	// ErrEmptyTargetSet is returned alongside an empty target slice when
	// rasterization produced no filled pixels. Callers treat it as degraded
	// output, not a failure.
	ErrEmptyTargetSet = errors.New("targets: no filled pixels")
	// ErrInvalidDimensions is returned for canvases with no area.
	ErrInvalidDimensions = errors.New("targets: invalid canvas dimensions")
)

// AssetLoadError reports an image reference that could not be fetched or decoded.
type AssetLoadError struct {
	Ref string
	Err error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("targets: loading %q: %v", e.Ref, e.Err)
}

// Unwrap exposes both ErrAssetLoad and the underlying cause to errors.Is.
func (e *AssetLoadError) Unwrap() []error {
	return []error{ErrAssetLoad, e.Err}
}

// TargetGenerationError reports which stage of generation failed.
type TargetGenerationError struct {
	Stage string // "layout", "font", "image", "scan"
	Err   error
}

func (e *TargetGenerationError) Error() string {
	return fmt.Sprintf("targets: %s: %v", e.Stage, e.Err)
}

func (e *TargetGenerationError) Unwrap() error {
	return e.Err
}

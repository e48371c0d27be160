//go:build !windows

package overlay

// NewSurface is not implemented off Windows.
func NewSurface() (Surface, error) {
	return nil, ErrOverlayUnsupported
}

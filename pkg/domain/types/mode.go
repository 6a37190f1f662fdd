package types

import "github.com/m-mizutani/goerr/v2"

// DiscoveryMode selects the strategy used to find papers related to a seed
type DiscoveryMode string

const (
	// ModeGrounding discovers related papers via a search-grounded
	// generative provider.
	ModeGrounding DiscoveryMode = "grounding"

	// ModeReferences discovers related papers via a citation-graph
	// provider's reference list.
	ModeReferences DiscoveryMode = "references"
)

func (x DiscoveryMode) String() string {
	return string(x)
}

// Validate checks if the DiscoveryMode is one of the known strategies
func (x DiscoveryMode) Validate() error {
	switch x {
	case ModeGrounding, ModeReferences:
		return nil
	default:
		return goerr.Wrap(ErrInvalidMode, "discovery mode must be 'grounding' or 'references'", goerr.V(ModeKey, x))
	}
}

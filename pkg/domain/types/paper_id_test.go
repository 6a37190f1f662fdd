package types_test

import (
	"testing"

	"github.com/litmap/litmap/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestCanonicalPaperID(t *testing.T) {
	testCases := map[string]struct {
		input    string
		expected types.PaperID
	}{
		"bare ID": {
			input:    "1706.03762",
			expected: "1706.03762",
		},
		"versioned ID": {
			input:    "1706.03762v5",
			expected: "1706.03762",
		},
		"arXiv prefix": {
			input:    "arXiv:1706.03762v5",
			expected: "1706.03762",
		},
		"lowercase prefix": {
			input:    "arxiv:2301.12345",
			expected: "2301.12345",
		},
		"abs URL": {
			input:    "https://arxiv.org/abs/2301.12345",
			expected: "2301.12345",
		},
		"abs URL with trailing slash": {
			input:    "https://arxiv.org/abs/2301.12345/",
			expected: "2301.12345",
		},
		"abs URL with version": {
			input:    "https://arxiv.org/abs/1706.03762v2",
			expected: "1706.03762",
		},
		"pdf URL": {
			input:    "https://arxiv.org/pdf/1706.03762.pdf",
			expected: "1706.03762",
		},
		"pdf URL without extension": {
			input:    "https://arxiv.org/pdf/1706.03762",
			expected: "1706.03762",
		},
		"surrounding whitespace": {
			input:    "  1706.03762  ",
			expected: "1706.03762",
		},
		"old style ID keeps category": {
			input:    "hep-th/9901001",
			expected: "hep-th/9901001",
		},
		"version suffix on non-numeric tail untouched": {
			input:    "cs.CV",
			expected: "cs.CV",
		},
		"empty input": {
			input:    "",
			expected: "",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			gt.Value(t, types.CanonicalPaperID(tc.input)).Equal(tc.expected)
		})
	}
}

func TestPaperIDValidate(t *testing.T) {
	gt.NoError(t, types.PaperID("1706.03762").Validate())
	gt.Error(t, types.PaperID("").Validate()).Is(types.ErrInvalidPaperLink)
}

func TestPaperIDURL(t *testing.T) {
	gt.Value(t, types.PaperID("1706.03762").URL()).Equal("https://arxiv.org/abs/1706.03762")
}

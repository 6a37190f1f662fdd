package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/litmap/litmap/pkg/domain/types"
	"github.com/litmap/litmap/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// maxSummaryRunes limits the seed summary included in the prompt
const maxSummaryRunes = 500

// defaultCandidateCount is how many related papers the model is asked for
const defaultCandidateCount = 8

const groundingSystemPrompt = `You are a research assistant that finds arXiv papers related to a given paper.
Use web search knowledge to identify real, existing arXiv papers.

## Output format

Return one paper per line, exactly as:

ARXIV_ID: <id> | TITLE: <title>

where <id> is the bare arXiv identifier such as 1706.03762.
Do not invent identifiers. Do not include the given paper itself.
If you cannot find related papers, return an empty response.`

// Grounding discovers related papers by asking a search-grounded
// generative model
type Grounding struct {
	llmClient gollem.LLMClient
}

var _ Strategy = &Grounding{}

// NewGrounding creates a grounding-based discovery strategy
func NewGrounding(llmClient gollem.LLMClient) (*Grounding, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &Grounding{llmClient: llmClient}, nil
}

func (g *Grounding) Mode() types.DiscoveryMode {
	return types.ModeGrounding
}

func (g *Grounding) Discover(ctx context.Context, seed *model.Paper) ([]Candidate, error) {
	session, err := g.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(groundingSystemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildGroundingPrompt(seed)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate related papers",
			goerr.V(types.PaperIDKey, seed.ID))
	}
	if len(resp.Texts) == 0 {
		return nil, nil
	}

	candidates := parseCandidates(resp.Texts[0], seed.ID)
	logging.From(ctx).Debug("grounding discovery finished",
		"seed", seed.ID,
		"candidates", len(candidates))

	return candidates, nil
}

func buildGroundingPrompt(seed *model.Paper) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Find up to %d arXiv papers closely related to this paper.\n\n", defaultCandidateCount)
	fmt.Fprintf(&sb, "Title: %s\n", seed.Title)

	if seed.Summary != "" {
		summary := []rune(seed.Summary)
		if len(summary) > maxSummaryRunes {
			summary = summary[:maxSummaryRunes]
		}
		fmt.Fprintf(&sb, "Abstract: %s\n", string(summary))
	}

	return sb.String()
}

var (
	structuredLineRe = regexp.MustCompile(`(?i)ARXIV_ID:\s*(\S+)\s*\|\s*TITLE:\s*(.+)`)
	numericIDRe      = regexp.MustCompile(`^\d{4}\.\d{4,5}$`)
	bareIDRe         = regexp.MustCompile(`\d{4}\.\d{4,5}`)
)

// parseCandidates extracts candidates from the model response. Structured
// lines are preferred but their ID token must be a numeric arXiv
// identifier after canonicalization; anything else (models emit tokens
// like "N/A") falls through to the bare-ID scan, which uses the line
// itself as a provisional title. The first occurrence of an ID wins.
func parseCandidates(text string, seedID types.PaperID) []Candidate {
	seen := map[types.PaperID]bool{seedID: true}
	candidates := make([]Candidate, 0)

	add := func(id types.PaperID, title string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		candidates = append(candidates, Candidate{ID: id, Title: strings.TrimSpace(title)})
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := structuredLineRe.FindStringSubmatch(line); m != nil {
			if id := types.CanonicalPaperID(m[1]); numericIDRe.MatchString(id.String()) {
				add(id, m[2])
				continue
			}
		}

		if id := bareIDRe.FindString(line); id != "" {
			add(types.CanonicalPaperID(id), line)
		}
	}

	return candidates
}

package document

import (
	"fmt"
	"time"
)

// Stable chunk labels. Downstream tooling and tests locate the inserted
// blocks by these literals, so they must not change between releases.
const (
	SeedChunkLabel        = "seed-set-by-weave"
	SessionInfoChunkLabel = "session-info-by-weave"
)

// separatorLine visually closes the inserted report before the original body
// resumes.
const separatorLine = "---"

// lastUpdatedMarker prefixes the literal marker line inserted right after the
// metadata block.
const lastUpdatedMarker = "**Last updated:**"

// LastUpdatedLine renders the marker line recording when the document was
// last built.
func LastUpdatedLine(now time.Time) string {
	return fmt.Sprintf("%s %s", lastUpdatedMarker, now.Format("2006-01-02"))
}

// SeedBlock returns an executable chunk pinning the global random seed. The
// chunk is hidden from the rendered output.
func SeedBlock(seed int) []string {
	return []string{
		fmt.Sprintf("```{r %s, include=FALSE}", SeedChunkLabel),
		fmt.Sprintf("set.seed(%d)", seed),
		"```",
	}
}

// SessionInfoBlock returns an executable chunk evaluating the configured
// environment-summary expression at the end of the document.
func SessionInfoBlock(expression string) []string {
	return []string{
		"",
		separatorLine,
		"",
		"## Session information",
		"",
		fmt.Sprintf("```{r %s, echo=FALSE}", SessionInfoChunkLabel),
		expression,
		"```",
	}
}

// Package cli provides CLI output rendering for Ujenzi.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/umoja/ujenzi/internal/models"
	"github.com/umoja/ujenzi/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const sourcePreviewLen = 200

// WriteAnswer writes an answer bundle to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteAnswer(w io.Writer, bundle *models.AnswerBundle, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(bundle)
	default:
		writeAnswerText(w, bundle)
		return nil
	}
}

func writeAnswerText(w io.Writer, bundle *models.AnswerBundle) {
	fmt.Fprintf(w, "\n%s\n", bundle.Text)

	if len(bundle.Sources) > 0 {
		fmt.Fprintf(w, "\nSources:\n")
		for i, source := range bundle.Sources {
			fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
			fmt.Fprintf(w, "[%d] %s\n", i+1, source.Name)
			fmt.Fprintf(w, "%s\n", utils.Truncate(source.Preview, sourcePreviewLen))
		}
	}

	if len(bundle.MatchedImages) > 0 {
		fmt.Fprintf(w, "\nSuggested figures:\n")
		for _, image := range bundle.MatchedImages {
			fmt.Fprintf(w, "  %s", image.Filename)
			if image.Description != "" {
				fmt.Fprintf(w, ": %s", image.Description)
			}
			if image.ArticleTopic != "" {
				fmt.Fprintf(w, " (from %q)", image.ArticleTopic)
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(w, "\nAnswered in %dms\n", bundle.QueryTime)
}

// WriteStatus writes assistant status to w in the given format.
func WriteStatus(w io.Writer, status *models.AssistantStatus, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	default:
		fmt.Fprintf(w, "Knowledge chunks:  %d\n", status.Chunks)
		fmt.Fprintf(w, "Unique sources:    %d\n", status.UniqueSources)
		fmt.Fprintf(w, "Artifact size:     %d bytes\n", status.ArtifactBytes)
		fmt.Fprintf(w, "Image catalog:     %d articles, %d images\n", status.Articles, status.Images)
		return nil
	}
}

// PrintAnswer prints an answer bundle to stdout in text format.
func PrintAnswer(bundle *models.AnswerBundle) {
	_ = WriteAnswer(os.Stdout, bundle, OutputText)
}

package generator

import (
	"fmt"
	"strings"

	"github.com/chroniclehq/feedgen/internal/models"
)

const systemPrompt = "You are a reflective journaling companion that writes short, warm feed posts " +
	"about a person's week from their own tracked activity. Write in second person, never invent " +
	"data that is not in the summary, and respond with valid JSON only: " +
	`{"title": string, "body": string, "confidence": number between 0 and 1}. ` +
	"Confidence reflects how well the data supports the post."

// maxFindingsInPrompt caps how many detections of one kind get quoted into a
// prompt so a noisy detector cannot blow up the token budget.
const maxFindingsInPrompt = 3

// typeInstructions holds the per-type angle appended to the shared activity
// summary. Every cataloged content type must have an entry; buildPrompt
// fails closed on gaps.
var typeInstructions = map[models.ContentType]string{
	models.ContentTypeLifeSummary:        "Write a brief summary of the week so far: what kinds of activity happened and how full the week looks.",
	models.ContentTypeHealthAlert:        "An anomaly was detected in the health data. Gently flag it and suggest paying attention, without alarmism or medical advice.",
	models.ContentTypePatternPrediction:  "A prediction was detected. Describe what the pattern suggests is coming and frame it as a heads-up, not a certainty.",
	models.ContentTypeStreakAchievement:  "A streak was detected. Celebrate it concretely: name the streak and its length.",
	models.ContentTypeReflectiveInsight:  "Offer one reflective observation about how movement showed up this week.",
	models.ContentTypeCategoryInsight:    "Pick the busiest capture category and say something specific about what it shows.",
	models.ContentTypeMilestone:          "A milestone was detected. Mark the moment and say what it took to get here.",
	models.ContentTypeMemoryHighlight:    "Surface one captured moment worth remembering from the notes or photos.",
	models.ContentTypeActivityPattern:    "A recurring pattern was detected. Describe the rhythm it reveals.",
	models.ContentTypeComparison:         "Compare this week's movement with the typical week, staying neutral about whether more is better.",
	models.ContentTypeSeasonalReflection: "Zoom out to the season: what has this stretch of weeks been about?",
}

// buildPrompt assembles the user prompt for one content type.
func buildPrompt(contentType models.ContentType, input *UserContext) (string, error) {
	instruction, ok := typeInstructions[contentType]
	if !ok {
		return "", fmt.Errorf("no prompt instruction for content type %s", contentType)
	}

	var b strings.Builder
	b.WriteString("Activity summary for the last 7 days:\n")
	fmt.Fprintf(&b, "- activity points: %d\n", input.Snapshot.PointsLast7Days)
	for _, category := range models.AllCategories {
		if n := input.Snapshot.Count(category); n > 0 {
			fmt.Fprintf(&b, "- %s records: %d\n", category, n)
		}
	}
	fmt.Fprintf(&b, "- distinct activity labels: %d\n", input.Snapshot.UniqueActivityCount)
	fmt.Fprintf(&b, "- collections updated in the last day: %d of %d\n",
		input.Snapshot.FreshCollections, models.FreshCollectionCount)

	writeFindings(&b, input.Findings)

	b.WriteString("\nTask: ")
	b.WriteString(instruction)

	return b.String(), nil
}

func writeFindings(b *strings.Builder, findings *models.DetectorFindings) {
	if findings == nil {
		return
	}
	for _, kind := range models.AllDetectorKinds {
		detections := findings.ByKind(kind)
		if len(detections) == 0 {
			continue
		}
		fmt.Fprintf(b, "\nDetected %s signals:\n", kind)
		for i, d := range detections {
			if i >= maxFindingsInPrompt {
				fmt.Fprintf(b, "- and %d more\n", len(detections)-maxFindingsInPrompt)
				break
			}
			fmt.Fprintf(b, "- %s\n", d.Summary)
		}
	}
}

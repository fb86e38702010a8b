package extract

import (
	"fmt"
	"strings"

	"github.com/imagendo/radeval/internal/model"
)

// BuildPrompt renders the extraction instruction for one report. The field
// list comes from the dataset template in canonical order; the model must
// answer with a flat JSON object using exactly those keys. Descriptive
// fields use "0" for "no abnormality", matching the ground-truth data
// entry convention.
func BuildPrompt(schema *model.Schema, displayID string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are extracting structured data from the attached pages of radiology report %s.\n\n", displayID)
	b.WriteString("Return ONLY a flat JSON object, no prose and no code fences. ")
	b.WriteString("Use exactly the following keys, all of them, and no others:\n\n")
	for _, f := range schema.Fields() {
		fmt.Fprintf(&b, "  %q\n", f.Name)
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- Every value must be a string or a number, never an object or array.\n")
	b.WriteString("- For yes/no findings answer \"1\" (present) or \"0\" (absent).\n")
	b.WriteString("- For measurements give the numeric value only, without units.\n")
	b.WriteString("- For descriptive fields with no abnormality reported, answer \"0\".\n")
	b.WriteString("- If the report does not mention a field at all, answer \"\".\n")

	return b.String()
}

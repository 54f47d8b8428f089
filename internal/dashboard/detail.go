package dashboard

import (
	"fmt"
	"strings"

	"github.com/softgrove/vitrine/internal/viewstate"
)

// renderDetail builds the right-pane content for the current selection.
func renderDetail(selected int, detail viewstate.DetailState) string {
	if selected < 0 {
		return mutedText.Render("Select an object to see its detail")
	}
	if !detail.Found {
		return mutedText.Render(fmt.Sprintf("Object #%d not in catalog", selected))
	}

	obj := detail.Object
	var b strings.Builder
	b.WriteString(titleText.Render(obj.DisplayTitle()))
	b.WriteString(mutedText.Render(fmt.Sprintf("  #%d", obj.ID)))
	b.WriteString("\n\n")

	writeField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(mutedText.Render(label+": ") + value + "\n")
	}
	writeField("Artist", obj.Artist)
	writeField("Date", obj.Date)
	writeField("Medium", obj.Medium)
	writeField("Image", obj.ImageURL)

	if obj.Description != "" {
		b.WriteString("\n" + obj.Description + "\n")
	}
	return b.String()
}

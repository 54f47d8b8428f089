// Package render writes plain-text views of catalog data for non-TTY
// output and one-shot commands.
package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/softgrove/vitrine/internal/museum"
)

// Listing writes a tab-aligned table of the given objects.
func Listing(w io.Writer, objects []museum.Object) error {
	if len(objects) == 0 {
		_, err := fmt.Fprintln(w, "No objects in catalog")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tARTIST\tDATE")
	for _, obj := range objects {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", obj.ID, obj.DisplayTitle(), obj.Artist, obj.Date)
	}
	return tw.Flush()
}

// Detail writes a full plain-text view of a single object.
func Detail(w io.Writer, obj museum.Object) {
	fmt.Fprintf(w, "%s (#%d)\n", obj.DisplayTitle(), obj.ID)
	if obj.Artist != "" {
		fmt.Fprintf(w, "Artist: %s\n", obj.Artist)
	}
	if obj.Date != "" {
		fmt.Fprintf(w, "Date:   %s\n", obj.Date)
	}
	if obj.Medium != "" {
		fmt.Fprintf(w, "Medium: %s\n", obj.Medium)
	}
	if obj.ImageURL != "" {
		fmt.Fprintf(w, "Image:  %s\n", obj.ImageURL)
	}
	if obj.Description != "" {
		fmt.Fprintf(w, "\n%s\n", obj.Description)
	}
}

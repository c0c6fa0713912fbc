package output

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/sdejongh/photoharvest/pkg/models"
)

// PlanDocument is the serialized form of a copy plan
type PlanDocument struct {
	ID         string       `json:"id" yaml:"id"`
	SourceRoot string       `json:"source_root" yaml:"source_root"`
	DestRoot   string       `json:"dest_root" yaml:"dest_root"`
	CreatedAt  time.Time    `json:"created_at" yaml:"created_at"`
	Entries    []PlanRecord `json:"entries" yaml:"entries"`
	Folders    []string     `json:"folders" yaml:"folders"`
}

// PlanRecord is one plan entry
type PlanRecord struct {
	Source     string `json:"source" yaml:"source"`
	DestFolder string `json:"dest_folder" yaml:"dest_folder"`
	DestName   string `json:"dest_name" yaml:"dest_name"`
}

// NewPlanDocument converts a plan, keeping entry order
func NewPlanDocument(plan *models.CopyPlan) PlanDocument {
	doc := PlanDocument{
		ID:         plan.ID,
		SourceRoot: plan.SourceRoot,
		DestRoot:   plan.DestRoot,
		CreatedAt:  plan.CreatedAt,
		Entries:    make([]PlanRecord, 0, plan.Len()),
		Folders:    []string{},
	}
	for _, entry := range plan.Entries {
		doc.Entries = append(doc.Entries, PlanRecord{
			Source:     entry.SourcePath(),
			DestFolder: entry.DestFolder.Path,
			DestName:   entry.DestName,
		})
	}
	for _, folder := range plan.Folders() {
		doc.Folders = append(doc.Folders, folder.Path)
	}
	return doc
}

// WritePlan renders plan to w as "human", "json" or "yaml"
func WritePlan(w io.Writer, plan *models.CopyPlan, format string) error {
	switch format {
	case "", "human":
		return writePlanHuman(w, plan)
	case "json":
		return encodeJSON(w, NewPlanDocument(plan))
	case "yaml":
		return encodeYAML(w, NewPlanDocument(plan))
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func writePlanHuman(w io.Writer, plan *models.CopyPlan) error {
	if plan.IsEmpty() {
		_, err := fmt.Fprintf(w, "Nothing to do: no files to copy from %s\n", plan.SourceRoot)
		return err
	}

	fmt.Fprintf(w, "Plan %s\n", plan.ID)
	fmt.Fprintf(w, "  Source:      %s\n", plan.SourceRoot)
	fmt.Fprintf(w, "  Destination: %s\n", plan.DestRoot)
	fmt.Fprintf(w, "\n")

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tDESTINATION")
	for _, entry := range plan.Entries {
		fmt.Fprintf(tw, "%s\t%s\n", entry.SourcePath(), entry.DestPath())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d files into %d folders\n", plan.Len(), len(plan.Folders()))
	return err
}

package plan

import (
	"context"
	"path/filepath"

	"github.com/sdejongh/photoharvest/pkg/logging"
	"github.com/sdejongh/photoharvest/pkg/models"
	"github.com/sdejongh/photoharvest/pkg/resolve"
)

// Assembler builds a copy plan from an enumeration and a survivor set
type Assembler struct {
	planner  *NamePlanner
	suffixes resolve.SuffixSet
	strict   bool
	logger   logging.Logger
}

// NewAssembler creates an assembler naming entries with planner.
//
// By default an entry is skipped only when its name is not a survivor and
// its suffix is not allowed, so a non-surviving original with an allowed
// suffix is still planned. With strict set only surviving names with an
// allowed suffix are planned.
func NewAssembler(planner *NamePlanner, suffixes resolve.SuffixSet, strict bool, logger logging.Logger) *Assembler {
	return &Assembler{
		planner:  planner,
		suffixes: suffixes,
		strict:   strict,
		logger:   logging.OrNull(logger),
	}
}

// BuildPlan walks the enumeration in sorted path order and plans every
// accepted entry. The first planner error aborts and is returned as is.
func (a *Assembler) BuildPlan(ctx context.Context, enumeration models.Enumeration, survivors *resolve.SurvivorSet) (*models.CopyPlan, error) {
	plan := models.NewCopyPlan("", a.planner.sourceRoot, a.planner.destRoot)

	for _, path := range enumeration.SortedPaths() {
		if !a.accepts(path, survivors) {
			a.logger.Debug(ctx, "Skip file", logging.Fields{"path": path})
			continue
		}

		folder, name, err := a.planner.PlanName(ctx, enumeration[path])
		if err != nil {
			return nil, err
		}
		plan.Add(models.CopyPlanEntry{
			Source:     enumeration[path],
			DestFolder: folder,
			DestName:   name,
		})
	}

	return plan, nil
}

func (a *Assembler) accepts(path string, survivors *resolve.SurvivorSet) bool {
	survives := survivors != nil && survivors.Contains(filepath.Base(path))
	allowed := a.suffixes.Allows(path)
	if a.strict {
		return survives && allowed
	}
	return survives || allowed
}

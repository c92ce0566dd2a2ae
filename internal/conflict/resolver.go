package conflict

import (
	"cmp"
	"errors"
	"slices"

	"filemerge/internal/logger"
	"filemerge/internal/model"

	"go.uber.org/zap"
)

var ErrConflictRejected = errors.New("filename conflicts were not confirmed")

// Resolution is the decision request produced from indexed records: the
// conflicting groups must be shown to an operator before Resolve is called.
type Resolution struct {
	groups    map[string][]model.FileRecord
	paths     []string
	conflicts []model.ConflictGroup
}

// Detect groups records by output path. It performs no I/O and never prompts.
func Detect(records []model.FileRecord) *Resolution {
	r := &Resolution{groups: make(map[string][]model.FileRecord)}

	for _, rec := range records {
		members := r.groups[rec.RelativePath]
		if slices.ContainsFunc(members, func(m model.FileRecord) bool {
			return m.SourceDir == rec.SourceDir
		}) {
			// the same physical file reached twice
			continue
		}
		r.groups[rec.RelativePath] = append(members, rec)
	}

	for path, members := range r.groups {
		r.paths = append(r.paths, path)
		if len(members) > 1 {
			sorted := slices.Clone(members)
			slices.SortFunc(sorted, func(a, b model.FileRecord) int {
				return cmp.Compare(a.SourcePriority, b.SourcePriority)
			})
			r.conflicts = append(r.conflicts, model.ConflictGroup{RelativePath: path, Members: sorted})
		}
	}

	slices.Sort(r.paths)
	slices.SortFunc(r.conflicts, func(a, b model.ConflictGroup) int {
		return cmp.Compare(a.RelativePath, b.RelativePath)
	})

	for _, c := range r.conflicts {
		logger.Log.Warn("conflict detected",
			zap.String("path", c.RelativePath),
			zap.Int("members", len(c.Members)))
	}

	return r
}

func (r *Resolution) Conflicts() []model.ConflictGroup {
	return r.conflicts
}

func (r *Resolution) HasConflicts() bool {
	return len(r.conflicts) > 0
}

// Resolve builds the move plan. With conflicts present it refuses unless the
// operator approved; each conflict then keeps its highest priority member.
func (r *Resolution) Resolve(approved bool) (model.MovePlan, error) {
	if r.HasConflicts() && !approved {
		return nil, ErrConflictRejected
	}

	plan := make(model.MovePlan, 0, len(r.paths))
	for _, path := range r.paths {
		winner := highestPriority(r.groups[path])
		plan = append(plan, winner)

		if len(r.groups[path]) > 1 {
			logger.Log.Info("conflict resolved: highest priority wins",
				zap.String("path", path),
				zap.String("source", winner.SourceDir),
				zap.Int("priority", winner.SourcePriority))
		}
	}

	return plan, nil
}

// Resolve is Detect followed by Resolution.Resolve with a pre-supplied decision.
func Resolve(records []model.FileRecord, approved bool) (model.MovePlan, []model.ConflictGroup, error) {
	r := Detect(records)
	plan, err := r.Resolve(approved)
	return plan, r.Conflicts(), err
}

func highestPriority(members []model.FileRecord) model.FileRecord {
	return slices.MaxFunc(members, func(a, b model.FileRecord) int {
		if c := cmp.Compare(a.SourcePriority, b.SourcePriority); c != 0 {
			return c
		}
		return cmp.Compare(a.ContentHash, b.ContentHash)
	})
}

package frames

import (
	"browser-agent/internal/entity"
	"cmp"
	"slices"
)

// labelRank orders frames by how descriptive their labelling is.
func labelRank(fc entity.FrameContext) int {
	switch {
	case fc.IsMain():
		return 0
	case fc.AriaLabel != "":
		return 1
	case fc.Title != "":
		return 2
	case fc.Name != "":
		return 3
	default:
		return 4
	}
}

// Prioritize returns a new slice in search order: the main frame, then
// aria-labelled, titled, named and unlabelled frames, each group by
// ascending index. The input is not modified.
func Prioritize(frames []entity.FrameContext, includeInaccessible bool) []entity.FrameContext {
	out := make([]entity.FrameContext, 0, len(frames))

	for _, fc := range frames {
		if !fc.Accessible && !includeInaccessible {
			continue
		}

		out = append(out, fc)
	}

	slices.SortStableFunc(out, func(a, b entity.FrameContext) int {
		if c := cmp.Compare(labelRank(a), labelRank(b)); c != 0 {
			return c
		}

		return cmp.Compare(a.Index, b.Index)
	})

	return out
}

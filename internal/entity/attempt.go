package entity

// InteractionAttempt records one strategy execution. It is never modified
// after the retry chain appends it.
type InteractionAttempt struct {
	Strategy     Strategy      `json:"strategy"`
	FrameContext *FrameContext `json:"frame_context,omitempty"`
	Success      bool          `json:"success"`
	DurationMs   int64         `json:"duration_ms"`
	Error        string        `json:"error,omitempty"`
}

// ChainReport is the serialisable view of a retry chain.
type ChainReport struct {
	Strategies        []Strategy           `json:"strategies"`
	MaxAttempts       int                  `json:"max_attempts"`
	Attempts          []InteractionAttempt `json:"attempts"`
	TimeoutPerFrameMs int64                `json:"timeout_per_frame_ms"`
	FinalIndex        int                  `json:"final_index"`
	Exhausted         bool                 `json:"exhausted"`
	Succeeded         bool                 `json:"succeeded"`
}

// Trail renders one "strategy: outcome" line per attempt.
func (r ChainReport) Trail() []string {
	lines := make([]string, 0, len(r.Attempts))

	for _, a := range r.Attempts {
		outcome := "ok"
		if !a.Success {
			outcome = a.Error
		}

		lines = append(lines, a.Strategy.ID()+": "+outcome)
	}

	return lines
}

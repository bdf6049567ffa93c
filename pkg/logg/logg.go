package logg

const (
	Layer         = "layer"
	Operation     = "operation"
	URL           = "url"
	Action        = "action"
	Description   = "description"
	Strategy      = "strategy"
	FrameIndex    = "frame_index"
	FrameName     = "frame_name"
	InteractionID = "interaction_id"
	Span          = "span"
	Duration      = "duration"
	ErrorCode     = "error_code"
	TraceID       = "trace_id"
)

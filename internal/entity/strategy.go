package entity

import (
	"encoding/json"
	"fmt"
)

type StrategyKind int

const (
	StrategyMainFrame StrategyKind = iota
	StrategyIframe
	StrategyCoordinateClick
)

func (k StrategyKind) String() string {
	switch k {
	case StrategyMainFrame:
		return "main_frame"
	case StrategyIframe:
		return "iframe"
	case StrategyCoordinateClick:
		return "coordinate_click"
	default:
		return fmt.Sprintf("strategy(%d)", int(k))
	}
}

// Strategy is a closed variant: MainFrame | Iframe(Frame) | CoordinateClick.
// Frame is set for MainFrame and Iframe, nil for CoordinateClick.
type Strategy struct {
	Kind  StrategyKind
	Frame *FrameContext
}

func MainFrameStrategy(main FrameContext) Strategy {
	return Strategy{Kind: StrategyMainFrame, Frame: &main}
}

func IframeStrategy(frame FrameContext) Strategy {
	return Strategy{Kind: StrategyIframe, Frame: &frame}
}

func CoordinateClickStrategy() Strategy {
	return Strategy{Kind: StrategyCoordinateClick}
}

// ID is the stable identifier used in attempt logs: main_frame,
// iframe_<index>[_<name>], coordinate_click.
func (s Strategy) ID() string {
	switch s.Kind {
	case StrategyMainFrame:
		return "main_frame"
	case StrategyIframe:
		if s.Frame == nil {
			return "iframe"
		}

		if s.Frame.Name != "" {
			return fmt.Sprintf("iframe_%d_%s", s.Frame.Index, s.Frame.Name)
		}

		return fmt.Sprintf("iframe_%d", s.Frame.Index)
	case StrategyCoordinateClick:
		return "coordinate_click"
	default:
		return s.Kind.String()
	}
}

func (s Strategy) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ID())
}

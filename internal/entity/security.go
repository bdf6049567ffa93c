package entity

type ActionType string

const (
	ActionTypeSafe     ActionType = "safe"
	ActionTypeDelete   ActionType = "delete"
	ActionTypeSend     ActionType = "send"
	ActionTypePayment  ActionType = "payment"
	ActionTypePassword ActionType = "password"
	ActionTypeMfa      ActionType = "mfa"
)

// SecurityCheck is the outcome of classifying one intended action.
// IsBlocked and RequiresConfirmation are never both true.
type SecurityCheck struct {
	ActionType           ActionType `json:"action_type"`
	IsBlocked            bool       `json:"is_blocked"`
	RequiresConfirmation bool       `json:"requires_confirmation"`
	Confidence           float64    `json:"confidence"`
	MatchedPatterns      []string   `json:"matched_patterns,omitempty"`
	ConfirmationPrompt   string     `json:"confirmation_prompt,omitempty"`
	Reason               string     `json:"reason,omitempty"`
	Suggestion           string     `json:"suggestion,omitempty"`
}

type ConfirmationResult string

const (
	ConfirmationConfirmed ConfirmationResult = "confirmed"
	ConfirmationDenied    ConfirmationResult = "denied"
	ConfirmationCancelled ConfirmationResult = "cancelled"
)

type ConfirmationRequest struct {
	ActionDescription string
	Check             SecurityCheck
	Details           map[string]string
}

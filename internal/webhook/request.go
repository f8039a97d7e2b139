package webhook

import (
	"encoding/json"
	"fmt"
	"strings"

	"eatopia/internal/apperr"
	"eatopia/internal/models"
)

// WebhookRequest is the subset of the platform's fulfillment request we read
type WebhookRequest struct {
	Session     string       `json:"session"`
	QueryResult *QueryResult `json:"queryResult"`
}

type QueryResult struct {
	Intent     *IntentInfo       `json:"intent"`
	Parameters models.Parameters `json:"parameters"`
}

type IntentInfo struct {
	DisplayName string `json:"displayName"`
}

// WebhookResponse is the reply envelope; only the text is ever set
type WebhookResponse struct {
	FulfillmentText string `json:"fulfillmentText"`
}

// Request is a parsed fulfillment request
type Request struct {
	Intent     string
	Parameters models.Parameters
	SessionID  string
}

// ParseRequest extracts the intent display name, parameters and session id
// from a fulfillment request body. The session id is the last path segment
// of the session field.
func ParseRequest(body []byte) (Request, error) {
	var raw WebhookRequest
	if err := json.Unmarshal(body, &raw); err != nil {
		return Request{}, fmt.Errorf("%w: %w", apperr.ErrMalformedInput, err)
	}

	if raw.QueryResult == nil {
		return Request{}, fmt.Errorf("%w: queryResult is missing", apperr.ErrMalformedInput)
	}
	if raw.QueryResult.Intent == nil || raw.QueryResult.Intent.DisplayName == "" {
		return Request{}, fmt.Errorf("%w: queryResult.intent.displayName is missing", apperr.ErrMalformedInput)
	}

	sessionID := raw.Session
	if i := strings.LastIndex(sessionID, "/"); i >= 0 {
		sessionID = sessionID[i+1:]
	}
	if sessionID == "" {
		return Request{}, apperr.ErrMissingSession
	}

	params := raw.QueryResult.Parameters
	if params == nil {
		params = models.Parameters{}
	}

	return Request{
		Intent:     raw.QueryResult.Intent.DisplayName,
		Parameters: params,
		SessionID:  sessionID,
	}, nil
}

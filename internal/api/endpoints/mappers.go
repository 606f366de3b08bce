package endpoints

import (
	"lead-intake-backend/internal/dto"
	"lead-intake-backend/internal/flow"
	"lead-intake-backend/internal/model"
)

func toSessionResponse(session model.SessionItem) dto.SessionResponse {
	return dto.SessionResponse{
		SessionID:    session.SessionID,
		Status:       string(session.Status),
		Language:     session.Language,
		EntryMode:    session.EntryMode,
		CurrentState: session.CurrentState,
		ClosedReason: session.ClosedReason,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	}
}

func toTurnResponse(turn model.TurnItem) dto.TurnResponse {
	return dto.TurnResponse{
		TurnID:    turn.TurnID,
		Sender:    string(turn.Sender),
		Content:   turn.Content,
		CreatedAt: turn.CreatedAt,
	}
}

func toTurnResponses(turns []model.TurnItem) []dto.TurnResponse {
	out := make([]dto.TurnResponse, 0, len(turns))
	for _, turn := range turns {
		out = append(out, toTurnResponse(turn))
	}
	return out
}

func toOptionResponses(options []flow.Option) []dto.OptionResponse {
	out := make([]dto.OptionResponse, 0, len(options))
	for _, option := range options {
		out = append(out, dto.OptionResponse{Value: option.Value, Label: option.Label})
	}
	return out
}

func toOperatorResponse(operator model.OperatorItem) dto.OperatorResponse {
	return dto.OperatorResponse{
		OperatorID: operator.OperatorID,
		Email:      operator.Email,
		Name:       operator.Name,
	}
}

func toCannedResponse(response model.CannedResponseItem) dto.CannedResponseResponse {
	return dto.CannedResponseResponse{
		ResponseID: response.ResponseID,
		Trigger:    response.Trigger,
		Body:       response.Body,
	}
}

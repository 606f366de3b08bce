package model

import "fmt"

const (
	SessionsTable        = "Sessions"
	TurnsTable           = "Turns"
	LeadsTable           = "Leads"
	CannedResponsesTable = "CannedResponses"
	OperatorsTable       = "Operators"
)

func TurnPK(sessionID, turnID string) string {
	return fmt.Sprintf("%s#%s", sessionID, turnID)
}

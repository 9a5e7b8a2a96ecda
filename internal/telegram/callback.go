package telegram

import "strings"

type callbackAction string

const callbackActionInfo callbackAction = "info"

const payloadRankScoreCriteria = "rank_score_criteria"

// parseCallbackData splits "action:payload" on the first colon.
func parseCallbackData(data string) (callbackAction, string) {
	action, payload, _ := strings.Cut(strings.TrimSpace(data), ":")
	return callbackAction(action), payload
}

func callbackData(action callbackAction, payload string) string {
	return string(action) + ":" + payload
}

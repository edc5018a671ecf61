package web

type RoomSummary struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Status       string `json:"status"`
	Participants int    `json:"participants"`
}

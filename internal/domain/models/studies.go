package models

import "encoding/json"

// StudyMessage is a study request carried over Kafka.
// Periods accepts either a JSON number or a JSON array.
type StudyMessage struct {
	ID      string             `json:"id"`
	Study   string             `json:"study"`
	Symbol  string             `json:"symbol"`
	Range   string             `json:"range,omitempty"`
	Col     string             `json:"col,omitempty"`
	HighCol string             `json:"highcol,omitempty"`
	LowCol  string             `json:"lowcol,omitempty"`
	Periods json.RawMessage    `json:"periods,omitempty"`
	Params  map[string]float64 `json:"params,omitempty"`
}

// StudyResultMessage is published for every consumed StudyMessage.
// Exactly one of Table and Error is set.
type StudyResultMessage struct {
	ID     string      `json:"id"`
	Study  string      `json:"study"`
	Symbol string      `json:"symbol"`
	Table  *SplitTable `json:"table,omitempty"`
	Error  string      `json:"error,omitempty"`
	Kind   string      `json:"kind,omitempty"`
}

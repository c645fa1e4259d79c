package models

// Requests for studies and reference-data HTTP endpoints.

type StudyRequest struct {
	Name    string `param:"name" json:"name" validate:"required"`
	Symbol  string `query:"symbol" json:"symbol" validate:"required"`
	Range   string `query:"range" json:"range" default:"6m"`
	Col     string `query:"col" json:"col" default:"close"`
	HighCol string `query:"highcol" json:"highcol" default:"high"`
	LowCol  string `query:"lowcol" json:"lowcol" default:"low"`
	Periods string `query:"periods" json:"periods" validate:"omitempty,periods"`
	Format  string `query:"format" json:"format" default:"json" validate:"oneof=json table"`
}

type IsinRequest struct {
	Isin   string `query:"isin" json:"isin" validate:"required,len=12,alphanum"`
	Filter string `query:"filter" json:"filter"`
	Format string `query:"format" json:"format" default:"json" validate:"oneof=json table"`
}

// StudyInfo describes a registered study for the catalog endpoint.
type StudyInfo struct {
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Inputs         []string           `json:"inputs"`
	Periodic       bool               `json:"periodic"`
	DefaultPeriods []int              `json:"default_periods,omitempty"`
	Params         map[string]float64 `json:"params,omitempty"`
}

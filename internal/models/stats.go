package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StatisticalDataset is the root payload of one aggregation-type run against
// the statistics provider. Immutable after decoding; consumed synchronously
// by the aggregator and the report builder.
type StatisticalDataset struct {
	Status    ResultStatus       `json:"status"`
	Parameter QueryParameter     `json:"parameter"`
	Position  Position           `json:"position"`
	Tables    []StatisticalTable `json:"tables"`
}

// ResultStatus carries the provider's success/failure code.
type ResultStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Date    string `json:"date,omitempty"`
}

// Failed reports whether the provider flagged the run as failed.
func (s ResultStatus) Failed() bool {
	return s.Code != 0
}

// QueryParameter echoes the query the provider resolved the dataset for.
type QueryParameter struct {
	RangeType  string   `json:"range_type"`
	Latitude   string   `json:"latitude"`
	Longitude  string   `json:"longitude"`
	Radii      []string `json:"radii,omitempty"`
	Times      []string `json:"times,omitempty"`
	Speed      string   `json:"speed,omitempty"`
	TravelMode string   `json:"travel_mode,omitempty"`
}

// Position is the resolved place description for the queried point.
type Position struct {
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
	Block      string `json:"block"`
}

// StatisticalTable is one cross-tabulated statistic, e.g. population by age
// and sex. Title text drives semantic role detection downstream.
type StatisticalTable struct {
	Title           string        `json:"title"`
	StatisticsName  string        `json:"statistics_name"`
	StatKind        string        `json:"stat_kind"`
	Classifications []Dimension   `json:"classifications"`
	Observations    []Observation `json:"observations"`
}

// Dimension is one classification axis of a table.
type Dimension struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Codes []CodeLabel `json:"codes,omitempty"`
}

// CodeLabel maps one dimension code to its human-readable label. The
// aggregation-area dimension additionally carries radius or time-band
// metadata usable to synthesize display names.
type CodeLabel struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Radius string `json:"radius,omitempty"`
	Range  string `json:"range,omitempty"`
}

// Observation is a single tagged numeric data point. Tags map dimension IDs
// to the code this observation is filed under; dimensions not relevant to
// the observation are simply absent. The map is materialized once at decode
// time so extraction never builds lookup keys ad hoc.
type Observation struct {
	Value string            `json:"value"`
	Unit  string            `json:"unit,omitempty"`
	Tags  map[string]string `json:"tags"`
}

// DecodeDataset decodes the provider's nested summary payload into the
// internal model. A payload without the summary envelope at all is a
// contract violation and returns an error; a payload with a failure status
// or no tables decodes fine and is handled downstream by zero-filling.
func DecodeDataset(data []byte) (*StatisticalDataset, error) {
	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode statistics payload: %w", err)
	}
	if env.GetSummary == nil {
		return nil, &ValidationError{
			Field:   "GET_SUMMARY",
			Message: "statistics payload missing summary envelope",
		}
	}

	ds := &StatisticalDataset{
		Status: ResultStatus{
			Code:    env.GetSummary.Result.Status,
			Message: env.GetSummary.Result.ErrorMsg,
			Date:    env.GetSummary.Result.Date,
		},
		Parameter: QueryParameter{
			RangeType:  env.GetSummary.Parameter.RangeType,
			Latitude:   string(env.GetSummary.Parameter.Latitude),
			Longitude:  string(env.GetSummary.Parameter.Longitude),
			Radii:      env.GetSummary.Parameter.Radius.values(),
			Times:      env.GetSummary.Parameter.Time.values(),
			Speed:      string(env.GetSummary.Parameter.Speed),
			TravelMode: env.GetSummary.Parameter.TravelMode,
		},
		Position: Position{
			Prefecture: env.GetSummary.Position.Prefecture,
			City:       env.GetSummary.Position.City,
			Block:      env.GetSummary.Position.Block,
		},
	}

	for _, wds := range env.GetSummary.Datasets {
		for _, wt := range wds.Tables {
			ds.Tables = append(ds.Tables, wt.toTable())
		}
	}

	return ds, nil
}

// ValidationError represents malformed input at the contract boundary.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent.
func (e *ValidationError) IsTransient() bool {
	return false
}

// ----- wire format -----
//
// The provider encodes dimension tags as dynamic "@<id>" keys on each value
// object and wraps single-element lists as bare objects. The wire structs
// below absorb both quirks so the rest of the codebase only ever sees the
// explicit model above.

type wireEnvelope struct {
	GetSummary *wireSummary `json:"GET_SUMMARY"`
}

type wireSummary struct {
	Result    wireResult    `json:"RESULT"`
	Parameter wireParameter `json:"PARAMETER"`
	Position  wirePosition  `json:"POSITION_INF"`
	Datasets  []wireDataset `json:"DATASET_INF"`
}

type wireResult struct {
	Status   int    `json:"STATUS"`
	ErrorMsg string `json:"ERROR_MSG"`
	Date     string `json:"DATE"`
}

type wireParameter struct {
	RangeType  string       `json:"RANGE_TYPE"`
	Latitude   flexString   `json:"LATITUDE"`
	Longitude  flexString   `json:"LONGITUDE"`
	Radius     wireTagList  `json:"RADIUS"`
	Time       wireTagList  `json:"TIME"`
	Speed      flexString   `json:"SPEED"`
	TravelMode string       `json:"TRAVEL_MODE"`
}

type wirePosition struct {
	Prefecture string `json:"PREFECTURE"`
	City       string `json:"CITY"`
	Block      string `json:"BLOCK"`
}

type wireDataset struct {
	Tables []wireTable `json:"TABLE_INF"`
}

type wireTable struct {
	Title          string       `json:"TITLE"`
	StatisticsName string       `json:"STATISTICS_NAME"`
	StatKind       string       `json:"STAT_KIND"`
	ClassInf       wireClassInf `json:"CLASS_INF"`
	DataInf        wireDataInf  `json:"DATA_INF"`
}

func (t wireTable) toTable() StatisticalTable {
	table := StatisticalTable{
		Title:          t.Title,
		StatisticsName: t.StatisticsName,
		StatKind:       t.StatKind,
	}

	for _, obj := range t.ClassInf.ClassObj {
		dim := Dimension{ID: obj.ID, Name: obj.Name}
		for _, c := range obj.Class {
			dim.Codes = append(dim.Codes, CodeLabel{
				Code:   c.Code,
				Label:  c.Name,
				Radius: c.Radius,
				Range:  c.Range,
			})
		}
		table.Classifications = append(table.Classifications, dim)
	}

	for _, v := range t.DataInf.Values {
		table.Observations = append(table.Observations, Observation{
			Value: v.Value,
			Unit:  v.Unit,
			Tags:  v.Tags,
		})
	}

	return table
}

type wireClassInf struct {
	ClassObj []wireClassObj `json:"CLASS_OBJ"`
}

type wireClassObj struct {
	ID    string        `json:"@id"`
	Name  string        `json:"@name"`
	Class wireClassList `json:"CLASS"`
}

type wireClass struct {
	Code   string `json:"@code"`
	Name   string `json:"@name"`
	Radius string `json:"@radius"`
	Range  string `json:"@range"`
}

// wireClassList accepts both a JSON array and a bare object.
type wireClassList []wireClass

func (l *wireClassList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var arr []wireClass
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		*l = arr
		return nil
	}
	var single wireClass
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = wireClassList{single}
	return nil
}

type wireDataInf struct {
	Values []wireValue `json:"VALUE"`
}

// wireValue carries the numeric value under "$", the unit under "@unit" and
// one dynamic "@<dimension-id>" key per tagged dimension.
type wireValue struct {
	Value string
	Unit  string
	Tags  map[string]string
}

func (v *wireValue) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	v.Tags = make(map[string]string, len(raw))
	for key, msg := range raw {
		var s flexString
		if err := json.Unmarshal(msg, &s); err != nil {
			return err
		}
		switch {
		case key == "$":
			v.Value = string(s)
		case key == "@unit":
			v.Unit = string(s)
		case strings.HasPrefix(key, "@"):
			v.Tags[strings.TrimPrefix(key, "@")] = string(s)
		}
	}

	return nil
}

// wireTagList accepts a single {"$": "..."} object or an array of them.
type wireTagList []wireTagged

type wireTagged struct {
	Value flexString `json:"$"`
}

func (l *wireTagList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var arr []wireTagged
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		*l = arr
		return nil
	}
	var single wireTagged
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = wireTagList{single}
	return nil
}

func (l wireTagList) values() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, len(l))
	for i, t := range l {
		out[i] = string(t.Value)
	}
	return out
}

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

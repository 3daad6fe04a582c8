package entities

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type PredictionKind string

const (
	PredictionKindCrop       PredictionKind = "crop"
	PredictionKindFertilizer PredictionKind = "fertilizer"
)

// CropForm holds the raw crop recommendation inputs as typed by the user.
type CropForm struct {
	Nitrogen    string `json:"nitrogen"`
	Phosphorus  string `json:"phosphorus"`
	Potassium   string `json:"potassium"`
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	PH          string `json:"ph"`
	Rainfall    string `json:"rainfall"`
}

// CropInput is the payload of the backend's /predict-crop endpoint.
type CropInput struct {
	Nitrogen    float64 `json:"Nitrogen"`
	Phosphorus  float64 `json:"Phosphorus"`
	Potassium   float64 `json:"Potassium"`
	Temperature float64 `json:"Temperature"`
	Humidity    float64 `json:"Humidity"`
	PH          float64 `json:"pH"`
	Rainfall    float64 `json:"Rainfall"`
}

func (f CropForm) Parse() (CropInput, error) {
	var in CropInput
	fields := []struct {
		name   string
		raw    string
		target *float64
	}{
		{"nitrogen", f.Nitrogen, &in.Nitrogen},
		{"phosphorus", f.Phosphorus, &in.Phosphorus},
		{"potassium", f.Potassium, &in.Potassium},
		{"temperature", f.Temperature, &in.Temperature},
		{"humidity", f.Humidity, &in.Humidity},
		{"ph", f.PH, &in.PH},
		{"rainfall", f.Rainfall, &in.Rainfall},
	}

	// The crop screen reports a single message when anything is blank.
	for _, field := range fields {
		if strings.TrimSpace(field.raw) == "" {
			return CropInput{}, ErrMissingFields
		}
	}
	for _, field := range fields {
		v, err := parseNumber(field.name, field.raw)
		if err != nil {
			return CropInput{}, err
		}
		*field.target = v
	}
	return in, nil
}

// FertilizerForm holds the raw fertilizer recommendation inputs.
type FertilizerForm struct {
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	Moisture    string `json:"moisture"`
	SoilType    string `json:"soil_type"`
	CropType    string `json:"crop_type"`
	Nitrogen    string `json:"nitrogen"`
	Potassium   string `json:"potassium"`
	Phosphorous string `json:"phosphorous"`
}

// FertilizerInput is the payload of the backend's /predict-fertilizer endpoint.
type FertilizerInput struct {
	Temperature float64 `json:"temp"`
	Humidity    float64 `json:"humid"`
	Moisture    float64 `json:"mois"`
	SoilType    string  `json:"soil"`
	CropType    string  `json:"crop"`
	Nitrogen    float64 `json:"nitro"`
	Potassium   float64 `json:"pota"`
	Phosphorous float64 `json:"phos"`
}

// Parse converts the numeric fields. Soil and crop are copied verbatim;
// checking them against the catalog is the caller's job.
func (f FertilizerForm) Parse() (FertilizerInput, error) {
	in := FertilizerInput{
		SoilType: strings.TrimSpace(f.SoilType),
		CropType: strings.TrimSpace(f.CropType),
	}

	numeric := []struct {
		name   string
		raw    string
		target *float64
	}{
		{"temperature", f.Temperature, &in.Temperature},
		{"humidity", f.Humidity, &in.Humidity},
		{"moisture", f.Moisture, &in.Moisture},
		{"nitrogen", f.Nitrogen, &in.Nitrogen},
		{"potassium", f.Potassium, &in.Potassium},
		{"phosphorous", f.Phosphorous, &in.Phosphorous},
	}

	for _, field := range numeric {
		v, err := parseNumber(field.name, field.raw)
		if err != nil {
			return FertilizerInput{}, err
		}
		*field.target = v
	}
	return in, nil
}

func parseNumber(field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ValidationError{Field: field, Reason: "is required"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ValidationError{Field: field, Reason: "must be a valid number"}
	}
	return v, nil
}

// Prediction is one recommendation returned to a user.
type Prediction struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Kind      PredictionKind `json:"kind"`
	Input     interface{}    `json:"input"`
	Result    string         `json:"result"`
	CreatedAt time.Time      `json:"created_at"`
}

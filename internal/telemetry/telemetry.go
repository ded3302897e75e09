// Package telemetry defines the soil-station reading carried over MQTT.
package telemetry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Reading is one sample published by a field station.
type Reading struct {
	StationID    string    `json:"station_id" validate:"required,max=64"`
	Timestamp    time.Time `json:"timestamp" validate:"required"`
	PH           *float64  `json:"ph" validate:"required,gte=0,lte=14"`
	SoilMoisture *float64  `json:"soil_moisture_pct" validate:"required,gte=0,lte=100"`
	Temperature  *float64  `json:"temperature_c" validate:"required,gte=-50,lte=70"`
	Location     string    `json:"location,omitempty" validate:"max=128"`
	TopN         *int      `json:"top_n,omitempty" validate:"omitempty,gte=1,lte=50"`
	Sequence     *int      `json:"sequence,omitempty"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator, using json tag names in errors.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks r and reports every failing field in one error.
func Validate(r Reading) error {
	return Describe(Validator().Struct(r))
}

// Describe flattens validator errors into "field: rule" messages. Other errors
// pass through unchanged.
func Describe(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "gte", "lte", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s", fe.Field(), ruleText(fe.Tag()), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func ruleText(tag string) string {
	switch tag {
	case "gte":
		return ">="
	case "lte":
		return "<="
	default:
		return "at most"
	}
}

// Topic returns the MQTT topic a station publishes readings on.
func Topic(stationID string) string {
	return "sensors/" + stationID + "/readings"
}

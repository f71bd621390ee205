package pipeline

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ougirez/nightlights/internal/pkg/constants"
)

// Config is the definition of one extraction run.
type Config struct {
	Country      string `validate:"required"`
	CountryField string `validate:"required"`
	NameField    string `validate:"required"`
	Aliases      map[string]string

	Band  string    `validate:"required"`
	Start time.Time `validate:"required"`
	End   time.Time `validate:"required,gtfield=Start"`

	Scale   float64 `validate:"gte=0"`
	Reducer string  `validate:"required"`
	Workers int     `validate:"gte=0"`

	Destination string `validate:"required"`
	Description string `validate:"required,excludesall=/\\"`
	Format      string `validate:"required"`
}

func DefaultConfig() Config {
	start, _ := time.Parse(time.DateOnly, constants.DefaultStart)
	end, _ := time.Parse(time.DateOnly, constants.DefaultEnd)

	return Config{
		Country:      constants.DefaultCountry,
		CountryField: constants.DefaultCountryField,
		NameField:    constants.DefaultNameField,
		Band:         constants.DefaultBand,
		Start:        start,
		End:          end,
		Scale:        constants.DefaultScale,
		Reducer:      constants.DefaultReducer,
		Destination:  constants.DestinationFile,
		Description:  constants.DefaultDescription,
		Format:       constants.DefaultFormat,
	}
}

var validate = validator.New()

// Validate reports definition-time errors before any stage runs.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), constants.ErrInvalidConfig)
	}
	if c.Reducer != constants.DefaultReducer {
		return fmt.Errorf("%s: %w", c.Reducer, constants.ErrUnsupportedReducer)
	}
	if c.Format != constants.DefaultFormat {
		return fmt.Errorf("%s: %w", c.Format, constants.ErrUnsupportedFormat)
	}
	return nil
}

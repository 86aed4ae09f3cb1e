package domain

import (
	"context"

	"github.com/go-playground/validator/v10"
)

// validatorInstance is a package-level validator instance.
// Using a single instance is more efficient as it caches struct information.
var validatorInstance = validator.New()

// Image is a single searchable entry of the image catalog.
type Image struct {
	ID          string   `yaml:"id" json:"id" validate:"required,max=128"`
	Title       string   `yaml:"title" json:"title" validate:"required,max=256"`
	URL         string   `yaml:"url" json:"url" validate:"required,url"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty" validate:"max=2048"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty" validate:"dive,required"`
}

// Validate runs validation checks on the Image using the defined tags.
func (i *Image) Validate() error {
	return validatorInstance.Struct(i)
}

// Result is an image matched by a resolver, with its relevance score.
// Higher scores rank first; browse listings carry a score of zero.
type Result struct {
	Image Image   `json:"image"`
	Score float64 `json:"score"`
}

// Resolver turns a query string into the results shown in the result grid.
// An empty query is valid. Implementations must honour ctx cancellation.
type Resolver interface {
	Resolve(ctx context.Context, query string) ([]Result, error)
}

package render

import (
	"encoding/json"

	"github.com/dshills/profilecards/internal/region"
	"github.com/dshills/profilecards/internal/schema"
)

type jsonRenderer struct{}

type jsonRegion struct {
	ID    string        `json:"id"`
	Cards []schema.Card `json:"cards"`
}

func (r *jsonRenderer) Render(cards []schema.Card) ([]byte, error) {
	if cards == nil {
		cards = []schema.Card{}
	}
	return json.MarshalIndent(jsonRegion{ID: region.ContainerID, Cards: cards}, "", "  ")
}

func (r *jsonRenderer) ContentType() string { return "application/json" }

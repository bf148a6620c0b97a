package scryfall

import (
	"errors"
	"fmt"
)

// Card represents a Magic card from Scryfall.
//
// Fields that can be absent on multi-faced cards are pointers (or nil slices)
// so that "missing" can be told apart from "present but empty".
type Card struct {
	Object   string `json:"object"`
	ID       string `json:"id"`
	OracleID string `json:"oracle_id,omitempty"`

	Name      string            `json:"name"`
	Layout    string            `json:"layout,omitempty"`
	ImageURIs map[string]string `json:"image_uris,omitempty"`
	ManaCost  *string           `json:"mana_cost,omitempty"`
	CMC       *float64          `json:"cmc,omitempty"`
	TypeLine  *string           `json:"type_line,omitempty"`
	Colors    []string          `json:"colors,omitempty"`

	ColorIdentity []string `json:"color_identity,omitempty"`
	OracleText    string   `json:"oracle_text,omitempty"`

	SetCode         string `json:"set,omitempty"`
	SetName         string `json:"set_name,omitempty"`
	CollectorNumber string `json:"collector_number,omitempty"`
	Rarity          string `json:"rarity,omitempty"`
	ScryfallURI     string `json:"scryfall_uri,omitempty"`

	// Card faces (for DFCs, MDFCs, split cards)
	CardFaces []CardFace `json:"card_faces,omitempty"`
}

// CardFace represents one face of a multi-faced card.
type CardFace struct {
	Name      string            `json:"name"`
	ManaCost  *string           `json:"mana_cost,omitempty"`
	TypeLine  *string           `json:"type_line,omitempty"`
	Colors    []string          `json:"colors,omitempty"`
	ImageURIs map[string]string `json:"image_uris,omitempty"`
}

// Image sizes served by Scryfall.
const (
	ImageSmall      = "small"
	ImageNormal     = "normal"
	ImageLarge      = "large"
	ImagePNG        = "png"
	ImageArtCrop    = "art_crop"
	ImageBorderCrop = "border_crop"
)

// APIError represents an error payload from the Scryfall API.
type APIError struct {
	Object   string   `json:"object"`
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Details  string   `json:"details"`
	Type     string   `json:"type,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Details)
	}
	return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Code)
}

// NotFoundError represents a 404 from the API.
type NotFoundError struct {
	URL string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

var (
	// ErrTransport wraps network failures and timeouts.
	ErrTransport = errors.New("scryfall: transport failure")
	// ErrUnexpectedStatus is returned for non-200 responses without an error payload.
	ErrUnexpectedStatus = errors.New("scryfall: unexpected status")
	// ErrDecode is returned when a 200 body is not a card object.
	ErrDecode = errors.New("scryfall: malformed response")
)

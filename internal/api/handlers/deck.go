package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ramonehamilton/pdc-decklist/internal/api/response"
	"github.com/ramonehamilton/pdc-decklist/internal/deck"
	"github.com/ramonehamilton/pdc-decklist/internal/deckexport"
	"github.com/ramonehamilton/pdc-decklist/internal/decklist"
)

// maxDecklistBytes caps request bodies; a 100-card list is a few kilobytes.
const maxDecklistBytes = 1 << 20

// DeckService prepares decks from decklist text.
type DeckService interface {
	PrepareFromText(ctx context.Context, text, commander, partner string) *deck.Deck
}

// DeckHandler handles deck-related API requests.
type DeckHandler struct {
	service DeckService
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(service DeckService) *DeckHandler {
	return &DeckHandler{service: service}
}

// DeckRequest is the body of the deck endpoints.
type DeckRequest struct {
	Decklist  string `json:"decklist"`
	Commander string `json:"commander,omitempty"`
	Partner   string `json:"partner,omitempty"`
	Name      string `json:"name,omitempty"` // Export filename only
}

// RenderResponse is a prepared deck plus markup for every mana cost it contains.
type RenderResponse struct {
	*deck.Deck
	ManaMarkup map[string]string `json:"mana_markup"`
}

// ValidateResponse reports whether a decklist has cards.
type ValidateResponse struct {
	Valid       bool `json:"valid"`
	TotalCards  int  `json:"total_cards"`
	UniqueCards int  `json:"unique_cards"`
}

func decodeDeckRequest(w http.ResponseWriter, r *http.Request) (*DeckRequest, bool) {
	var req DeckRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDecklistBytes)).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return nil, false
	}
	return &req, true
}

// RenderDeck enriches, sorts, groups and summarizes a decklist.
func (h *DeckHandler) RenderDeck(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDeckRequest(w, r)
	if !ok {
		return
	}

	d := h.service.PrepareFromText(r.Context(), req.Decklist, req.Commander, req.Partner)
	// Lookups after the deadline come back empty, so the deck would be incomplete.
	if err := r.Context().Err(); err != nil {
		response.GatewayTimeout(w, fmt.Errorf("card lookups did not finish: %w", err))
		return
	}
	response.Success(w, RenderResponse{Deck: d, ManaMarkup: manaMarkup(d)})
}

// ValidateDeck counts the cards in a decklist without looking them up.
func (h *DeckHandler) ValidateDeck(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDeckRequest(w, r)
	if !ok {
		return
	}

	lines := decklist.Parse(req.Decklist)
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}

	response.Success(w, ValidateResponse{
		Valid:       len(lines) > 0,
		TotalCards:  total,
		UniqueCards: len(lines),
	})
}

// ExportDeck returns the decklist as a downloadable text file.
func (h *DeckHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	format, err := deckexport.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	req, ok := decodeDeckRequest(w, r)
	if !ok {
		return
	}

	export, err := deckexport.ExportText(req.Decklist, req.Commander, req.Partner, &deckexport.ExportOptions{
		Format:   format,
		DeckName: req.Name,
	})
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Attachment(w, export.Filename, export.Content)
}

func manaMarkup(d *deck.Deck) map[string]string {
	markup := make(map[string]string)
	add := func(cost string) {
		if cost == "" {
			return
		}
		if _, ok := markup[cost]; !ok {
			markup[cost] = deck.FormatManaCost(cost)
		}
	}

	for _, card := range d.Cards {
		add(card.ManaCost)
	}
	if d.Commander != nil {
		add(d.Commander.ManaCost)
	}
	if d.Partner != nil {
		add(d.Partner.ManaCost)
	}
	return markup
}

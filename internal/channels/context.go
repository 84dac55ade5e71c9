package channels

import (
	"strings"

	"github.com/kilimobot/kilimobot/internal/agents"
	"github.com/kilimobot/kilimobot/internal/analysis"
	"github.com/kilimobot/kilimobot/internal/store"
)

// DeriveUserContext builds the per-request context by scanning the inbound
// text for crop, county and farm-stage mentions, falling back to the stored
// profile for anything the text does not name. A nil user yields an
// anonymous context from the text alone.
func DeriveUserContext(text string, u *store.User) agents.UserContext {
	lower := strings.ToLower(text)
	uc := agents.UserContext{}

	if u != nil {
		uc.Identity = u.Identity
		uc.Name = u.Name
		uc.Region = u.County
		uc.SoilType = u.SoilType
		uc.FarmStage = u.FarmStage
		if len(u.Crops) > 0 {
			uc.Crop = u.Crops[0]
		}
		if u.Latitude != nil && u.Longitude != nil {
			uc.Latitude, uc.Longitude = *u.Latitude, *u.Longitude
			uc.HasCoords = true
		}
	}

	// Inline mentions override the stored profile.
	if crop := firstMatch(lower, analysis.CropTerms); crop != "" {
		uc.Crop = crop
	}
	if county := firstMatch(lower, analysis.Counties); county != "" {
		uc.Region = county
	}
	if stage := matchFarmStage(lower); stage != "" {
		uc.FarmStage = stage
	}

	return uc
}

// ExtractProfileSignals returns the profile fields an inbound message
// reveals, for a best-effort idempotent profile merge. An empty update
// means the text carried no signal.
func ExtractProfileSignals(text string) store.ProfileUpdate {
	lower := strings.ToLower(text)
	up := store.ProfileUpdate{
		County:    firstMatch(lower, analysis.Counties),
		FarmStage: matchFarmStage(lower),
	}
	for _, crop := range analysis.CropTerms {
		if strings.Contains(lower, crop) {
			up.Crops = append(up.Crops, crop)
		}
	}
	for _, animal := range analysis.LivestockTerms {
		if strings.Contains(lower, animal) {
			up.Livestock = append(up.Livestock, animal)
		}
	}
	return up
}

func signalsEmpty(up store.ProfileUpdate) bool {
	return up.County == "" && up.FarmStage == "" &&
		len(up.Crops) == 0 && len(up.Livestock) == 0
}

func firstMatch(lower string, terms []string) string {
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return term
		}
	}
	return ""
}

func matchFarmStage(lower string) string {
	for _, term := range analysis.FarmStageTerms {
		if strings.Contains(lower, term.Keyword) {
			return term.Stage
		}
	}
	return ""
}

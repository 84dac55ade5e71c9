package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/kilimobot/kilimobot/internal/knowledge"
)

// Topic names double as generator names and intent categories.
const (
	TopicCrop      = "crop"
	TopicLivestock = "livestock"
	TopicPest      = "pest"
	TopicClimate   = "climate"
	TopicMarket    = "market"
	TopicExtension = "extension"
)

// Services bundles the optional external collaborators topic strategies may
// consult opportunistically. Any field may be nil.
type Services struct {
	Weather WeatherService
	Soil    SoilService
	Market  MarketService
}

// CropStrategy advises on planting, varieties and agronomy.
func CropStrategy(svc Services) Strategy {
	return Strategy{
		Name: TopicCrop,
		Framing: "You are an experienced agronomist advising Kenyan smallholder farmers " +
			"on crop production: land preparation, planting, varieties, fertilization and harvest.",
		StructuredData: func(query string, uc UserContext) []string {
			var lines []string
			if e, ok := knowledge.PlantingCalendar(uc.Crop); ok {
				lines = append(lines, fmt.Sprintf("Planting window for %s: %s", e.Crop, e.PlantingMonths))
				lines = append(lines, fmt.Sprintf("Recommended varieties: %s", strings.Join(e.Varieties, ", ")))
				lines = append(lines, fmt.Sprintf("Spacing: %s", e.Spacing))
			}
			return lines
		},
		Enrich: func(ctx context.Context, query string, uc UserContext) (string, error) {
			if svc.Soil == nil || !uc.HasCoords {
				return "", nil
			}
			soil, err := svc.Soil.Classify(ctx, uc.Latitude, uc.Longitude)
			if err != nil {
				return "", fmt.Errorf("soil lookup: %w", err)
			}
			return "soil classification at farm location: " + soil, nil
		},
	}
}

// LivestockStrategy advises on animal husbandry and health.
func LivestockStrategy(svc Services) Strategy {
	return Strategy{
		Name: TopicLivestock,
		Framing: "You are a livestock production specialist advising Kenyan farmers on " +
			"animal feeding, housing, breeding and routine health management.",
		StructuredData: func(query string, uc UserContext) []string {
			e, ok := knowledge.LivestockFor(query)
			if !ok {
				return nil
			}
			return []string{
				fmt.Sprintf("%s feeding: %s", e.Animal, e.Feeding),
				fmt.Sprintf("%s health routine: %s", e.Animal, e.Health),
			}
		},
	}
}

// PestStrategy diagnoses and treats pests and diseases.
func PestStrategy(svc Services) Strategy {
	return Strategy{
		Name: TopicPest,
		Framing: "You are a plant-health expert diagnosing crop pests and diseases for " +
			"Kenyan farmers and recommending integrated management, starting with cultural controls.",
		StructuredData: func(query string, uc UserContext) []string {
			var lines []string
			for _, p := range knowledge.PestsMatching(query, uc.Crop) {
				lines = append(lines, fmt.Sprintf("%s: symptoms %s; treatment %s",
					p.Name, strings.Join(p.Symptoms, ", "), p.Treatment))
			}
			return lines
		},
	}
}

// ClimateStrategy advises on weather and seasonal planning.
func ClimateStrategy(svc Services) Strategy {
	return Strategy{
		Name: TopicClimate,
		Framing: "You are an agro-meteorology advisor helping Kenyan farmers plan around " +
			"rainfall seasons, drought and climate-smart practices.",
		Enrich: func(ctx context.Context, query string, uc UserContext) (string, error) {
			if svc.Weather == nil || !uc.HasCoords {
				return "", nil
			}
			wx, err := svc.Weather.Current(ctx, uc.Latitude, uc.Longitude)
			if err != nil {
				return "", fmt.Errorf("weather lookup: %w", err)
			}
			return wx, nil
		},
	}
}

// MarketStrategy advises on prices and selling decisions.
func MarketStrategy(svc Services) Strategy {
	return Strategy{
		Name: TopicMarket,
		Framing: "You are an agricultural market analyst advising Kenyan farmers on " +
			"prices, timing of sales and market access.",
		StructuredData: func(query string, uc UserContext) []string {
			commodity := uc.Crop
			if commodity == "" {
				commodity = firstCommodity(query)
			}
			if note, ok := knowledge.MarketNoteFor(commodity); ok {
				return []string{note}
			}
			return nil
		},
		Enrich: func(ctx context.Context, query string, uc UserContext) (string, error) {
			if svc.Market == nil {
				return "", nil
			}
			commodity := uc.Crop
			if commodity == "" {
				commodity = firstCommodity(query)
			}
			if commodity == "" {
				return "", nil
			}
			prices, err := svc.Market.Prices(ctx, commodity)
			if err != nil {
				return "", fmt.Errorf("market lookup: %w", err)
			}
			return prices, nil
		},
	}
}

// ExtensionStrategy covers advisory services, training and farm finance.
func ExtensionStrategy(svc Services) Strategy {
	return Strategy{
		Name: TopicExtension,
		Framing: "You are an agricultural extension officer guiding Kenyan farmers to " +
			"services, training, financing and good general practice.",
		StructuredData: func(query string, uc UserContext) []string {
			return knowledge.ExtensionNotes()
		},
	}
}

// AllStrategies returns the six topic strategies in dispatch order.
func AllStrategies(svc Services) []Strategy {
	return []Strategy{
		CropStrategy(svc),
		LivestockStrategy(svc),
		PestStrategy(svc),
		ClimateStrategy(svc),
		MarketStrategy(svc),
		ExtensionStrategy(svc),
	}
}

// firstCommodity finds the first known commodity mentioned in the text.
func firstCommodity(text string) string {
	lower := strings.ToLower(text)
	for _, c := range []string{"maize", "beans", "potato", "tomato", "milk"} {
		if strings.Contains(lower, c) {
			return c
		}
	}
	return ""
}

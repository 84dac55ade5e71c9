// Package geo resolves coordinates to the nearest Kenyan county so that a
// location share can seed a user's regional context.
package geo

import "math"

type centroid struct {
	county   string
	lat, lon float64
}

// County centroids, approximate. Matching is nearest-centroid, which is
// coarse but good enough for regional advice.
var centroids = []centroid{
	{"nairobi", -1.286, 36.817},
	{"nakuru", -0.303, 36.080},
	{"kiambu", -1.171, 36.835},
	{"meru", 0.047, 37.650},
	{"uasin gishu", 0.514, 35.270},
	{"kisumu", -0.092, 34.768},
	{"machakos", -1.518, 37.263},
	{"trans nzoia", 1.056, 34.951},
	{"nyeri", -0.420, 36.948},
	{"embu", -0.539, 37.458},
	{"kakamega", 0.282, 34.752},
	{"bungoma", 0.570, 34.558},
	{"narok", -1.078, 35.860},
	{"kericho", -0.368, 35.283},
	{"bomet", -0.781, 35.342},
	{"nyandarua", -0.180, 36.523},
	{"laikipia", 0.362, 36.783},
	{"murang'a", -0.784, 37.040},
	{"kitui", -1.375, 38.010},
	{"makueni", -1.804, 37.624},
	{"kilifi", -3.511, 39.909},
	{"kwale", -4.181, 39.460},
	{"homa bay", -0.527, 34.457},
	{"migori", -1.063, 34.473},
	{"siaya", 0.062, 34.288},
	{"busia", 0.434, 34.242},
	{"vihiga", 0.077, 34.708},
	{"nandi", 0.183, 35.126},
	{"baringo", 0.466, 35.966},
	{"kajiado", -1.853, 36.777},
	{"kirinyaga", -0.499, 37.280},
}

// Kenya's rough bounding box. Coordinates outside it get no county.
const (
	minLat, maxLat = -4.9, 5.1
	minLon, maxLon = 33.9, 41.9
)

// NearestCounty returns the county whose centroid is closest to the given
// coordinates, or "" when the point lies outside Kenya.
func NearestCounty(lat, lon float64) string {
	if lat < minLat || lat > maxLat || lon < minLon || lon > maxLon {
		return ""
	}

	best, bestDist := "", math.MaxFloat64
	for _, c := range centroids {
		d := (c.lat-lat)*(c.lat-lat) + (c.lon-lon)*(c.lon-lon)
		if d < bestDist {
			best, bestDist = c.county, d
		}
	}
	return best
}

package geo

import "testing"

func TestNearestCounty(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
		want     string
	}{
		{"nakuru town", -0.30, 36.07, "nakuru"},
		{"nairobi cbd", -1.29, 36.82, "nairobi"},
		{"eldoret", 0.52, 35.28, "uasin gishu"},
		{"coast", -3.6, 39.85, "kilifi"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NearestCounty(tc.lat, tc.lon); got != tc.want {
				t.Errorf("NearestCounty(%v, %v) = %q, want %q", tc.lat, tc.lon, got, tc.want)
			}
		})
	}
}

func TestNearestCountyOutsideKenya(t *testing.T) {
	if got := NearestCounty(51.5, -0.12); got != "" {
		t.Errorf("NearestCounty(London) = %q, want empty", got)
	}
	if got := NearestCounty(0, 0); got != "" {
		t.Errorf("NearestCounty(null island) = %q, want empty", got)
	}
}

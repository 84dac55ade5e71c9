package analysis

import (
	"reflect"
	"testing"
)

func TestAnalyzeDeterministic(t *testing.T) {
	inputs := []string{
		"hello",
		"What pests affect maize?",
		"Give me a comprehensive step by step guide to dairy farming and poultry and maize and beans",
		"",
	}
	for _, in := range inputs {
		a := Analyze(in)
		b := Analyze(in)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("Analyze(%q) not deterministic: %+v vs %+v", in, a, b)
		}
	}
}

func TestAnalyzeType(t *testing.T) {
	tests := []struct {
		text string
		want QueryType
	}{
		{"hello", TypeGreeting},
		{"habari yako", TypeGreeting},
		{"good morning", TypeGreeting},
		{"tell me about maize", TypeCommand},
		{"explain blight", TypeCommand},
		{"what pests affect maize?", TypeQuestion},
		{"when should I plant beans", TypeQuestion},
		{"my cow is sick", TypeStatement},
		{"the rains came early this year", TypeStatement},
	}
	for _, tt := range tests {
		if got := Analyze(tt.text).Type; got != tt.want {
			t.Errorf("Analyze(%q).Type = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestAnalyzeComplexity(t *testing.T) {
	tests := []struct {
		text string
		want Complexity
	}{
		{"plant maize", ComplexitySimple},
		{"hello there", ComplexitySimple},
		{"what is the best time to plant beans in Nakuru", ComplexityModerate},
		{"compare maize and sorghum yields", ComplexityComplex},
		{"give me a comprehensive guide", ComplexityComplex},
		// Over 20 words.
		{"I would like to know the best possible way to prepare my land for the coming long rains season this year please", ComplexityComplex},
		// More than 3 keywords.
		{"maize beans wheat rice problems", ComplexityComplex},
	}
	for _, tt := range tests {
		if got := Analyze(tt.text).Complexity; got != tt.want {
			t.Errorf("Analyze(%q).Complexity = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestAnalyzeUrgency(t *testing.T) {
	tests := []struct {
		text string
		want Urgency
	}{
		{"my chickens are dying", UrgencyHigh},
		{"the calf is bleeding badly", UrgencyHigh},
		{"my cow is sick", UrgencyMedium},
		{"goat not eating for two days", UrgencyMedium},
		{"when do I plant maize", UrgencyLow},
	}
	for _, tt := range tests {
		if got := Analyze(tt.text).Urgency; got != tt.want {
			t.Errorf("Analyze(%q).Urgency = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestAnalyzeKeywords(t *testing.T) {
	a := Analyze("What pests affect maize and beans?")
	want := map[string]bool{"pest": true, "maize": true, "beans": true}
	for _, kw := range a.Keywords {
		delete(want, kw)
	}
	if len(want) != 0 {
		t.Errorf("missing keywords %v in %v", want, a.Keywords)
	}
}

func TestAnalyzeLength(t *testing.T) {
	tests := []struct {
		text string
		want ResponseLength
	}{
		{"plant maize", LengthShort},
		{"what is the best time to plant beans in Nakuru", LengthMedium},
		{"explain step by step how to control armyworm", LengthLong},
	}
	for _, tt := range tests {
		if got := Analyze(tt.text).Length; got != tt.want {
			t.Errorf("Analyze(%q).Length = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestWordBands(t *testing.T) {
	tests := []struct {
		length   ResponseLength
		min, max int
	}{
		{LengthShort, 20, 100},
		{LengthMedium, 100, 300},
		{LengthLong, 300, 800},
	}
	for _, tt := range tests {
		band := tt.length.Band()
		if band.Min != tt.min || band.Max != tt.max {
			t.Errorf("%s band = %+v, want min %d max %d", tt.length, band, tt.min, tt.max)
		}
		if band.Target < band.Min || band.Target > band.Max {
			t.Errorf("%s target %d outside [%d,%d]", tt.length, band.Target, band.Min, band.Max)
		}
	}
}

func TestAnalyzeRequiresDetail(t *testing.T) {
	if !Analyze("explain how to treat blight").RequiresDetail {
		t.Error("detail phrasing should set RequiresDetail")
	}
	if Analyze("plant maize").RequiresDetail {
		t.Error("simple query should not set RequiresDetail")
	}
}

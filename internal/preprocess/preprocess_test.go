package preprocess

import "testing"

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Collapses whitespace",
			input:    "water   logging \n near   road",
			expected: "water logging near road",
		},
		{
			name:     "Strips URLs",
			input:    "see photo http://example.com/p.jpg garbage pile",
			expected: "see photo garbage pile",
		},
		{
			name:     "Empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "Trims leading and trailing space",
			input:    "  pothole on main road  ",
			expected: "pothole on main road",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.input); got != tt.expected {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractEntities(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		locations []string
	}{
		{
			name:      "Location after at",
			input:     "traffic jam at Genda Circle",
			locations: []string{"Genda Circle"},
		},
		{
			name:      "Location after near",
			input:     "pipeline burst near Gotri this morning",
			locations: []string{"Gotri"},
		},
		{
			name:      "No capitalized location",
			input:     "water everywhere near the market",
			locations: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractEntities(tt.input)
			if len(got.Locations) != len(tt.locations) {
				t.Fatalf("Expected %d locations, got %d (%v)", len(tt.locations), len(got.Locations), got.Locations)
			}
			for i := range tt.locations {
				if got.Locations[i] != tt.locations[i] {
					t.Errorf("Location[%d] = %q, want %q", i, got.Locations[i], tt.locations[i])
				}
			}
		})
	}
}

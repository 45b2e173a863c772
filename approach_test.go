package tlc

import "testing"

func TestParseOrientation(t *testing.T) {
	testCases := []struct {
		in       string
		expected Orientation
		ok       bool
	}{
		{"north-south", NorthSouth, true},
		{"NS", NorthSouth, true},
		{"east_west", EastWest, true},
		{"ew", EastWest, true},
		{"diagonal", NorthSouth, false},
	}
	for _, tc := range testCases {
		got, err := ParseOrientation(tc.in)
		if (err == nil) != tc.ok {
			t.Errorf("ParseOrientation(%q) error = %v", tc.in, err)
			continue
		}
		if tc.ok && got != tc.expected {
			t.Errorf("ParseOrientation(%q) = %s, want %s", tc.in, got, tc.expected)
		}
	}
}

func TestOrientation_Directions(t *testing.T) {
	if a, b := NorthSouth.Directions(); a != North || b != South {
		t.Errorf("Expected north/south, got %s/%s", a, b)
	}
	if a, b := EastWest.Directions(); a != East || b != West {
		t.Errorf("Expected east/west, got %s/%s", a, b)
	}
}

func TestInitialPhase(t *testing.T) {
	if p := InitialPhase(NorthSouthApproaches()); p != Green {
		t.Errorf("Expected north-south to start GREEN, got %s", p)
	}
	if p := InitialPhase(EastWestApproaches()); p != Red {
		t.Errorf("Expected east-west to start RED, got %s", p)
	}
}

func TestApproach_Lamp(t *testing.T) {
	a := NorthSouthApproaches()[1]
	if a.Lamp(Green) != 19 || a.Lamp(Yellow) != 21 || a.Lamp(Red) != 22 {
		t.Errorf("Unexpected lamp pins %v", a.Lamps)
	}
	if a.String() != "south" {
		t.Errorf("Expected south, got %s", a)
	}
}

func TestDirection_String(t *testing.T) {
	if Direction(0x09).String() != "none" {
		t.Error("Expected unknown direction to print as none")
	}
}

package detector

import (
	"testing"
)

func TestPerson_Area(t *testing.T) {
	tests := []struct {
		name   string
		person Person
		expect float64
	}{
		{
			name:   "quarter of image",
			person: Person{W: 0.5, H: 0.5},
			expect: 0.25,
		},
		{
			name:   "full image",
			person: Person{W: 1.0, H: 1.0},
			expect: 1.0,
		},
		{
			name:   "narrow subject",
			person: Person{W: 0.1, H: 0.6},
			expect: 0.06,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			area := tc.person.Area()
			diff := area - tc.expect
			if diff < -0.0001 || diff > 0.0001 {
				t.Errorf("Area: got %.4f, want %.4f", area, tc.expect)
			}
		})
	}
}

func TestSelectPrimary(t *testing.T) {
	tests := []struct {
		name      string
		people    []Person
		expectNil bool
		expectIdx int
	}{
		{
			name:      "empty list",
			people:    []Person{},
			expectNil: true,
		},
		{
			name: "single person",
			people: []Person{
				{X: 0.4, Y: 0.4, W: 0.2, H: 0.2, Score: 0.9},
			},
			expectIdx: 0,
		},
		{
			name: "high confidence beats larger area",
			people: []Person{
				{X: 0.0, Y: 0.0, W: 0.4, H: 0.4, Score: 0.5},
				{X: 0.3, Y: 0.3, W: 0.2, H: 0.2, Score: 0.95},
			},
			expectIdx: 1,
		},
		{
			name: "same confidence picks larger",
			people: []Person{
				{X: 0.0, Y: 0.0, W: 0.5, H: 0.5, Score: 0.8},
				{X: 0.3, Y: 0.3, W: 0.1, H: 0.1, Score: 0.8},
			},
			expectIdx: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			best := SelectPrimary(tc.people)
			if tc.expectNil {
				if best != nil {
					t.Errorf("expected nil, got %+v", best)
				}
				return
			}
			if best == nil {
				t.Fatal("expected a person, got nil")
			}
			if best != &tc.people[tc.expectIdx] {
				t.Errorf("picked wrong person: got %+v, want index %d", *best, tc.expectIdx)
			}
		})
	}
}

func TestNewYOLO_MissingModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = "does/not/exist.onnx"

	if _, err := NewYOLO(cfg); err == nil {
		t.Fatal("expected error for missing model file")
	}
}

func TestMock_Script(t *testing.T) {
	person := Person{Score: 0.9}
	m := NewMock([]Person{person}, nil)

	got, err := m.Detect(nil)
	if err != nil || len(got) != 1 {
		t.Fatalf("first call: got %v, %v", got, err)
	}

	// Second scripted result is an empty detection, which repeats.
	for i := 0; i < 3; i++ {
		got, err = m.Detect(nil)
		if err != nil || got != nil {
			t.Fatalf("call %d: got %v, %v, want empty", i+2, got, err)
		}
	}

	if m.Calls() != 4 {
		t.Errorf("calls: got %d, want 4", m.Calls())
	}
}

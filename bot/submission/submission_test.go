package submission

import (
	"testing"

	"grievbot/bot/issue"
)

func TestNext(t *testing.T) {
	testCases := []struct {
		name          string
		location      string
		photoRequired bool
		photo         []byte
		photoDeclined bool
		extraPrompt   string
		extraDetail   string

		expectState  State
		expectPrompt string
	}{
		{
			name:     "Missing location",
			location: "",

			expectState:  AwaitingLocation,
			expectPrompt: PromptLocation,
		}, {
			name:     "Unknown location placeholder",
			location: "unknown",

			expectState:  AwaitingLocation,
			expectPrompt: PromptLocation,
		}, {
			name:     "Uppercase unknown placeholder",
			location: "Unknown",

			expectState:  AwaitingLocation,
			expectPrompt: PromptLocation,
		}, {
			name:          "Two-char location is low confidence",
			location:      "ok",
			photoRequired: true,
			photo:         []byte{1, 2, 3},
			extraPrompt:   "When did it start?",
			extraDetail:   "yesterday",

			expectState:  AwaitingLocation,
			expectPrompt: PromptLocation,
		}, {
			name:     "Whitespace-padded short location",
			location: "  ok  ",

			expectState:  AwaitingLocation,
			expectPrompt: PromptLocation,
		}, {
			name:          "Photo required and missing",
			location:      "Main Street",
			photoRequired: true,

			expectState:  AwaitingPhoto,
			expectPrompt: PromptPhoto,
		}, {
			name:          "Photo required and provided",
			location:      "Main Street",
			photoRequired: true,
			photo:         []byte{0xff, 0xd8},

			expectState: Complete,
		}, {
			name:          "Photo required and declined",
			location:      "Main Street",
			photoRequired: true,
			photoDeclined: true,

			expectState: Complete,
		}, {
			name:        "Extra detail pending",
			location:    "Main Street",
			extraPrompt: "When did the power cut start?",

			expectState:  AwaitingExtraDetail,
			expectPrompt: "When did the power cut start?",
		}, {
			name:        "Extra detail provided",
			location:    "Main Street",
			extraPrompt: "When did the power cut start?",
			extraDetail: "Around 6pm",

			expectState: Complete,
		}, {
			name:     "No requirements, complete on first evaluation",
			location: "Main Street, near City Hall",

			expectState: Complete,
		}, {
			name:          "Photo ranks before extra detail",
			location:      "Main Street",
			photoRequired: true,
			extraPrompt:   "Nearby landmark?",

			expectState:  AwaitingPhoto,
			expectPrompt: PromptPhoto,
		},
	}

	for _, testCase := range testCases {
		s := &Submission{
			Location: testCase.location,
			Requirement: issue.Requirement{
				PhotoRequired: testCase.photoRequired,
				ExtraPrompt:   testCase.extraPrompt,
			},
			Photo:         testCase.photo,
			PhotoDeclined: testCase.photoDeclined,
			ExtraDetail:   testCase.extraDetail,
		}

		state, prompt := Next(s)
		if state != testCase.expectState {
			t.Errorf("%s: expected state %s, got %s", testCase.name, testCase.expectState, state)
		}
		if prompt != testCase.expectPrompt {
			t.Errorf("%s: expected prompt %q, got %q", testCase.name, testCase.expectPrompt, prompt)
		}

		// Same field presence must always yield the same result.
		again, prompt2 := Next(s)
		if again != state || prompt2 != prompt {
			t.Errorf("%s: Next is not deterministic: (%s,%q) vs (%s,%q)", testCase.name, state, prompt, again, prompt2)
		}
	}
}

func TestAdvanceMonotonic(t *testing.T) {
	s := &Submission{
		Issue: "Street Safety",
		Requirement: issue.Requirement{
			PhotoRequired: true,
			ExtraPrompt:   "Nearby landmark?",
		},
		Location: "unknown",
	}

	if state, _ := s.Advance(); state != AwaitingLocation {
		t.Fatalf("expected AwaitingLocation, got %s", state)
	}

	s.Location = "5th Avenue crossing"
	if state, _ := s.Advance(); state != AwaitingPhoto {
		t.Fatalf("expected AwaitingPhoto, got %s", state)
	}

	s.Photo = []byte{0xff, 0xd8, 0xff}
	if state, _ := s.Advance(); state != AwaitingExtraDetail {
		t.Fatalf("expected AwaitingExtraDetail, got %s", state)
	}

	s.ExtraDetail = "Next to the bakery"
	if state, _ := s.Advance(); state != Complete {
		t.Fatalf("expected Complete, got %s", state)
	}

	// Filling later fields never re-opens earlier ones.
	if state, _ := s.Advance(); state != Complete {
		t.Fatalf("state regressed after completion: %s", state)
	}
}

func TestHasPhoto(t *testing.T) {
	s := &Submission{PhotoDeclined: true}
	if s.HasPhoto() {
		t.Error("declined photo must not count as a photo")
	}
	s.Photo = []byte{1}
	if !s.HasPhoto() {
		t.Error("expected HasPhoto true with photo bytes present")
	}
}

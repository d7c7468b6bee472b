package hubbridge

import "testing"

func TestCommandsFromControlGroups(t *testing.T) {
	groups := []ControlGroup{
		{
			Name: "Volume",
			Function: []HubFunction{
				{Name: "VolumeUp", Label: "Volume Up", Action: `{"command":"VolumeUp"}`},
			},
		},
		{
			Name: "Power",
			Function: []HubFunction{
				{Name: "PowerToggle", Label: "Power Toggle", Action: `{"command":"PowerToggle"}`},
			},
		},
	}

	commands := CommandsFromControlGroups(groups)

	if len(commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(commands))
	}

	command, ok := commands["volume-up"]
	if !ok {
		t.Fatal("expected command under slug volume-up")
	}
	if command.Name != "VolumeUp" || command.Label != "Volume Up" || command.Slug != "volume-up" {
		t.Errorf("unexpected command fields: %+v", command)
	}
}

func TestCommandsEscapeActionDelimiter(t *testing.T) {
	groups := []ControlGroup{{
		Function: []HubFunction{
			{Name: "PowerOn", Label: "Power On", Action: `{"command":"PowerOn","deviceId":"123"}`},
		},
	}}

	commands := CommandsFromControlGroups(groups)

	expected := `{"command"::"PowerOn","deviceId"::"123"}`
	if got := commands["power-on"].Action; got != expected {
		t.Errorf("action = %q, want %q", got, expected)
	}
}

func TestCommandsEscapingAppliedOncePerIndexing(t *testing.T) {
	groups := []ControlGroup{{
		Function: []HubFunction{
			{Name: "PowerOn", Label: "Power On", Action: `a:b`},
		},
	}}

	first := CommandsFromControlGroups(groups)["power-on"].Action
	second := CommandsFromControlGroups(groups)["power-on"].Action

	if first != "a::b" || second != "a::b" {
		t.Errorf("indexing is not deterministic: %q vs %q", first, second)
	}
}

func TestCommandsSlugCollisionLastWriteWins(t *testing.T) {
	groups := []ControlGroup{{
		Function: []HubFunction{
			{Name: "PlayUpper", Label: "Play", Action: "a"},
			{Name: "PlayLower", Label: "play", Action: "b"},
		},
	}}

	commands := CommandsFromControlGroups(groups)

	if len(commands) != 1 {
		t.Fatalf("expected colliding slugs to collapse, got %d entries", len(commands))
	}
	if commands["play"].Name != "PlayLower" {
		t.Errorf("expected last write to win, got %q", commands["play"].Name)
	}
}

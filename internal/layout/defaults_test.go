package layout

import (
	"reflect"
	"testing"
)

func TestDefaultBlocks_Shape(t *testing.T) {
	blocks := DefaultBlocks(Campaign{ID: "c1", Title: "Save the bees"})

	if len(blocks) != 4 {
		t.Fatalf("expected 4 default blocks, got %d", len(blocks))
	}

	wantTypes := []BlockType{BlockTypeHero, BlockTypeCampaignInfo, BlockTypeDonateButton, BlockTypeFooter}
	for i, want := range wantTypes {
		if blocks[i].Type != want {
			t.Errorf("block %d: expected type %s, got %s", i, want, blocks[i].Type)
		}
	}

	if got := blocks[0].StringProp("title", ""); got != "Save the bees" {
		t.Errorf("hero title: expected campaign title, got %q", got)
	}
	if !blocks[1].BoolProp("show_winner", false) {
		t.Error("campaign_info should enable winner display")
	}
	if got := blocks[2].StringProp("label", ""); got != "Donate" {
		t.Errorf("donate_button label: got %q", got)
	}
	if !blocks[3].BoolProp("show_org_name", false) {
		t.Error("footer should enable org name display")
	}
}

func TestDefaultBlocks_Deterministic(t *testing.T) {
	campaign := Campaign{ID: "c1", Title: "Save the bees", Goal: 1000}
	first := DefaultBlocks(campaign)
	second := DefaultBlocks(campaign)
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical block lists for the same campaign snapshot")
	}
}

func TestDefaultBlocks_UntitledCampaign(t *testing.T) {
	blocks := DefaultBlocks(Campaign{ID: "c1"})
	if got := blocks[0].StringProp("title", ""); got != "Campaign" {
		t.Errorf("expected fallback title, got %q", got)
	}
}

func TestDefaultBlocks_PassValidation(t *testing.T) {
	if err := ValidateBlocks(DefaultBlocks(Campaign{ID: "c1", Title: "T"})); err != nil {
		t.Errorf("default layout must validate: %v", err)
	}
}

func TestResolvePresetAmounts(t *testing.T) {
	standard := []float64{5, 10, 25, 50, 100}

	tests := []struct {
		name   string
		blocks []Block
		want   []float64
	}{
		{
			name:   "no blocks",
			blocks: nil,
			want:   standard,
		},
		{
			name:   "no donate button",
			blocks: []Block{{ID: "t-1", Type: BlockTypeText}},
			want:   standard,
		},
		{
			name: "custom presets",
			blocks: []Block{{ID: "d-1", Type: BlockTypeDonateButton, Props: map[string]any{
				"preset_amounts": []any{float64(1), float64(2), float64(3)},
			}}},
			want: []float64{1, 2, 3},
		},
		{
			name: "invalid entries filtered",
			blocks: []Block{{ID: "d-1", Type: BlockTypeDonateButton, Props: map[string]any{
				"preset_amounts": []any{"ten", float64(-5), float64(0), float64(20)},
			}}},
			want: []float64{20},
		},
		{
			name: "all entries invalid falls back",
			blocks: []Block{{ID: "d-1", Type: BlockTypeDonateButton, Props: map[string]any{
				"preset_amounts": []any{"ten", float64(-5), nil},
			}}},
			want: standard,
		},
		{
			name: "empty list falls back",
			blocks: []Block{{ID: "d-1", Type: BlockTypeDonateButton, Props: map[string]any{
				"preset_amounts": []any{},
			}}},
			want: standard,
		},
		{
			name:   "missing props falls back",
			blocks: []Block{{ID: "d-1", Type: BlockTypeDonateButton}},
			want:   standard,
		},
		{
			name: "first donate button wins",
			blocks: []Block{
				{ID: "d-1", Type: BlockTypeDonateButton, Props: map[string]any{"preset_amounts": []any{float64(7)}}},
				{ID: "d-2", Type: BlockTypeDonateButton, Props: map[string]any{"preset_amounts": []any{float64(9)}}},
			},
			want: []float64{7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePresetAmounts(tt.blocks)
			if len(got) == 0 {
				t.Fatal("preset amounts must never be empty")
			}
			for _, n := range got {
				if n <= 0 {
					t.Fatalf("preset amounts must be positive, got %v", got)
				}
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

package release

import (
	"testing"

	"romrelease/pkg/types"
)

func TestFormatNotes(t *testing.T) {
	if got := FormatNotes(nil, "- Auto-generated release"); got != "- Auto-generated release" {
		t.Fatalf("fallback not used: %q", got)
	}
	if got := FormatNotes([]string{"", "  "}, "fallback"); got != "fallback" {
		t.Fatalf("blank notes should fall back, got %q", got)
	}
	got := FormatNotes([]string{"Fixed boot", " Updated kernel "}, "fallback")
	if got != "- Fixed boot\n- Updated kernel" {
		t.Fatalf("got %q", got)
	}
}

func TestCreateCommand(t *testing.T) {
	req := types.ReleaseRequest{
		Tag:   "rom-a-1",
		Title: "rom-a-1.zip",
		Notes: "- one\n- two",
		Files: []types.FileRef{{Path: "rom-a-1.zip"}, {Path: "boot image.img"}},
	}
	got := CreateCommand("", "acme/roms", req)
	want := `gh release create rom-a-1 rom-a-1.zip "boot image.img" --title rom-a-1.zip --notes "- one\n- two" --repo acme/roms`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

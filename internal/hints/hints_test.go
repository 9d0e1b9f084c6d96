package hints

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rtlpatch/internal/source"
)

const refSource = `module fifo(input core_clk, input rst, input [7:0] din, output reg [7:0] dout);
always @(posedge core_clk) begin
  if (rst)
    dout <= 0;
  else
    dout <= din;
end
endmodule

module shifter(input aux_clk, input d, output reg q);
always @(negedge aux_clk) begin
  q <= d;
end
endmodule
`

func TestExtract_ClocksInDiscoveryOrder(t *testing.T) {
	h := Extract(source.NewVirtual("ref.v", refSource))

	if len(h.Clocks) != 2 {
		t.Fatalf("Clocks = %v, want 2 entries", h.Clocks)
	}
	if h.Clocks[0] != "core_clk" || h.Clocks[1] != "aux_clk" {
		t.Errorf("Clocks = %v", h.Clocks)
	}
	if h.PreferredClock() != "core_clk" {
		t.Errorf("PreferredClock = %q", h.PreferredClock())
	}
}

func TestExtract_AlwaysBlocksGroupedByModule(t *testing.T) {
	h := Extract(source.NewVirtual("ref.v", refSource))

	if len(h.Blocks["fifo"]) != 1 {
		t.Fatalf("fifo blocks = %d, want 1", len(h.Blocks["fifo"]))
	}
	if len(h.Blocks["shifter"]) != 1 {
		t.Fatalf("shifter blocks = %d, want 1", len(h.Blocks["shifter"]))
	}

	block := h.Blocks["fifo"][0]
	if !strings.HasPrefix(block.Decl, "always @(posedge core_clk)") {
		t.Errorf("Decl = %q", block.Decl)
	}
	if len(block.Signature) == 0 {
		t.Error("expected non-empty signature")
	}
	if h.BlockCount() != 2 {
		t.Errorf("BlockCount = %d, want 2", h.BlockCount())
	}
}

func TestPreferredClock_NilHints(t *testing.T) {
	var h *Hints
	if h.PreferredClock() != "" {
		t.Error("nil hints should degrade to empty clock")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.v")); err == nil {
		t.Error("expected error for missing reference file")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cache, err := OpenDiskCache("rtlpatch-test")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}

	h := Extract(source.NewVirtual("ref.v", refSource))
	key := source.NewVirtual("ref.v", refSource).Hash

	if err := cache.Put(key, h); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := cache.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.PreferredClock() != "core_clk" {
		t.Errorf("PreferredClock = %q", got.PreferredClock())
	}
	if got.BlockCount() != h.BlockCount() {
		t.Errorf("BlockCount = %d, want %d", got.BlockCount(), h.BlockCount())
	}
}

func TestDiskCache_MissOnUnknownKey(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cache, err := OpenDiskCache("rtlpatch-test")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}

	var key [32]byte
	key[0] = 0xab
	if _, ok, err := cache.Get(key); ok || err != nil {
		t.Errorf("expected clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestLoadCached_PopulatesCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir := t.TempDir()
	path := filepath.Join(dir, "ref.v")
	if err := os.WriteFile(path, []byte(refSource), 0o644); err != nil {
		t.Fatal(err)
	}

	cache, err := OpenDiskCache("rtlpatch-test")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}

	first, err := LoadCached(path, cache)
	if err != nil {
		t.Fatalf("LoadCached: %v", err)
	}
	second, err := LoadCached(path, cache)
	if err != nil {
		t.Fatalf("LoadCached (cached): %v", err)
	}
	if first.PreferredClock() != second.PreferredClock() {
		t.Errorf("cache round trip mismatch: %q vs %q", first.PreferredClock(), second.PreferredClock())
	}
}

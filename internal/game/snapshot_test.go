package game

import (
	"bytes"
	"testing"
)

func snapshotFixture() *GameState {
	tg := NewTestGame(
		WithSeed(7),
		WithEmpire(1, "Alpha"),
		WithEmpire(2, "Beta"),
		WithDesign(FrigateDesign(1, 1)),
		WithOwnedStar(1, "Home", 0, 0, 1, 120_000),
		WithStar(2, "Rim", 90, 40),
		WithFleet(1, 1, 0, 0, ShipToken{Design: 1, Quantity: 3}),
	)
	return tg.State
}

func TestStateHashStable(t *testing.T) {
	g := snapshotFixture()
	h1, err := StateHash(g)
	if err != nil {
		t.Fatalf("StateHash: %v", err)
	}
	h2, err := StateHash(g)
	if err != nil {
		t.Fatalf("StateHash: %v", err)
	}
	if h1 != h2 {
		t.Errorf("hash of an unchanged state differs: %s vs %s", h1, h2)
	}

	clone, err := CloneState(g)
	if err != nil {
		t.Fatalf("CloneState: %v", err)
	}
	h3, err := StateHash(clone)
	if err != nil {
		t.Fatalf("StateHash clone: %v", err)
	}
	if h1 != h3 {
		t.Errorf("clone hashes differently: %s vs %s", h1, h3)
	}

	clone.Stars[1].Population++
	h4, err := StateHash(clone)
	if err != nil {
		t.Fatalf("StateHash mutated: %v", err)
	}
	if h4 == h1 {
		t.Error("mutated state keeps the same hash")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := snapshotFixture()
	clone, err := CloneState(g)
	if err != nil {
		t.Fatalf("CloneState: %v", err)
	}

	clone.Stars[1].Population = 1
	clone.Fleets[1].Fuel = 0
	clone.Turn = 99

	if g.Stars[1].Population == 1 || g.Fleets[1].Fuel == 0 || g.Turn == 99 {
		t.Error("mutating the clone leaked into the original")
	}
}

func TestCloneRestoresEmptyMaps(t *testing.T) {
	g := NewGameState(DefaultRules(), 1)
	clone, err := CloneState(g)
	if err != nil {
		t.Fatalf("CloneState: %v", err)
	}
	if clone.Stars == nil || clone.Fleets == nil || clone.Empires == nil ||
		clone.Designs == nil || clone.Minefields == nil {
		t.Error("clone of an empty state has nil maps")
	}
}

func TestSnapshotCompressionRoundTrip(t *testing.T) {
	data, err := CanonicalBytes(snapshotFixture())
	if err != nil {
		t.Fatalf("CanonicalBytes: %v", err)
	}
	packed, err := CompressSnapshot(data)
	if err != nil {
		t.Fatalf("CompressSnapshot: %v", err)
	}
	unpacked, err := DecompressSnapshot(packed)
	if err != nil {
		t.Fatalf("DecompressSnapshot: %v", err)
	}
	if !bytes.Equal(data, unpacked) {
		t.Errorf("round trip changed the payload: %d bytes in, %d out", len(data), len(unpacked))
	}
}

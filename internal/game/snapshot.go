package game

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"lukechampine.com/blake3"
)

// CanonicalBytes serializes a snapshot into a canonical byte form: same
// state, same bytes, always. encoding/json writes map keys in sorted order,
// which is what makes this canonical. These bytes back the determinism
// contract (hash comparison across runs) and state cloning.
func CanonicalBytes(g *GameState) ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("canonical serialize: %w", err)
	}
	return data, nil
}

// StateHash returns the blake3 hash of the canonical snapshot bytes as a
// hex string. Two runs of the same turn from the same inputs must produce
// equal hashes; anything else is a determinism bug.
func StateHash(g *GameState) (string, error) {
	data, err := CanonicalBytes(g)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// CloneState deep-copies a snapshot through its canonical byte form. The
// turn generator works on a clone so a faulted turn can be discarded without
// ever having touched the prior snapshot.
func CloneState(g *GameState) (*GameState, error) {
	data, err := CanonicalBytes(g)
	if err != nil {
		return nil, err
	}
	var out GameState
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("clone snapshot: %w", err)
	}
	// JSON drops empty maps; restore them so steps never nil-check.
	if out.Stars == nil {
		out.Stars = map[StarID]*Star{}
	}
	if out.Fleets == nil {
		out.Fleets = map[FleetID]*Fleet{}
	}
	if out.Empires == nil {
		out.Empires = map[EmpireID]*Empire{}
	}
	if out.Designs == nil {
		out.Designs = map[DesignID]*ShipDesign{}
	}
	if out.Minefields == nil {
		out.Minefields = map[int]*Minefield{}
	}
	return &out, nil
}

// CompressSnapshot lz4-compresses canonical snapshot bytes for archival.
func CompressSnapshot(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecompressSnapshot reverses CompressSnapshot.
func DecompressSnapshot(src []byte) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(src))
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	return data, nil
}

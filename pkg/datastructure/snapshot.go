package datastructure

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kelindar/binary"
	"github.com/klauspost/compress/zstd"
)

const snapshotVersion uint16 = 1

var ErrSnapshotVersion = errors.New("unsupported road graph snapshot version")

// graphSnapshot. nodes and edges in enumeration order, replaying them through AddNode & AddEdge
// rebuilds the same neighbour and parallel edge order.
type graphSnapshot struct {
	Version uint16
	Nodes   []Node
	Edges   []Edge
}

func (g *RoadGraph) MarshalBinary() ([]byte, error) {
	snap := graphSnapshot{
		Version: snapshotVersion,
		Nodes:   g.nodes,
		Edges:   g.edges,
	}
	bb, err := binary.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal road graph: %w", err)
	}
	return bb, nil
}

func UnmarshalRoadGraph(bb []byte) (*RoadGraph, error) {
	var snap graphSnapshot
	if err := binary.Unmarshal(bb, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal road graph: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}

	g := NewRoadGraph()
	for _, n := range snap.Nodes {
		g.AddNode(n.ID, n.Lat, n.Lon)
	}
	for _, e := range snap.Edges {
		g.AddEdge(e)
	}
	return g, nil
}

// WriteGraphFile stores the zstd compressed snapshot of g at path.
func WriteGraphFile(g *RoadGraph, path string) error {
	bb, err := g.MarshalBinary()
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := CompressData(bb, &out); err != nil {
		return err
	}
	return os.WriteFile(path, out.Bytes(), 0o644)
}

func ReadGraphFile(path string) (*RoadGraph, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var bb bytes.Buffer
	if err := DecompressData(compressed, &bb); err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	return UnmarshalRoadGraph(bb.Bytes())
}

func CompressData(inData []byte, bbufOut *bytes.Buffer) error {
	encoder, err := zstd.NewWriter(bbufOut, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	if _, err = io.Copy(encoder, bytes.NewReader(inData)); err != nil {
		encoder.Close()
		return err
	}
	return encoder.Close()
}

func DecompressData(inData []byte, out io.Writer) error {
	d, err := zstd.NewReader(bytes.NewReader(inData))
	if err != nil {
		return err
	}
	defer d.Close()

	_, err = io.Copy(out, d)
	return err
}

package memory

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runanywhere/commons/internal/backends"
	"github.com/runanywhere/commons/internal/domain/registry"
	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/features"
	"github.com/runanywhere/commons/internal/service"
	"github.com/runanywhere/commons/internal/types"
)

func TestMetricDistance(t *testing.T) {
	a := []float64{1, 0}
	b := []float64{0, 2}

	assert.InDelta(t, 5.0, MetricL2.distance(a, b), 1e-12)
	assert.InDelta(t, 1.0, MetricCosine.distance(a, b), 1e-12)
	assert.InDelta(t, 0.0, MetricCosine.distance(a, []float64{3, 0}), 1e-12)
	assert.InDelta(t, 1.0, MetricCosine.distance(a, []float64{0, 0}), 1e-12, "zero vector")
	assert.InDelta(t, -3.0, MetricInnerProduct.distance(a, []float64{3, 1}), 1e-12)
}

func TestParseMetric(t *testing.T) {
	for _, name := range []string{"l2", "cosine", "inner_product", "COSINE"} {
		_, err := ParseMetric(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseMetric("hamming")
	assert.Equal(t, errcode.InvalidArgument, errcode.CodeOf(err))
}

func TestNewIndexValidation(t *testing.T) {
	_, err := NewIndex(0, MetricL2)
	assert.Equal(t, errcode.InvalidArgument, errcode.CodeOf(err))
	_, err = NewIndex(4, Metric(9))
	assert.Equal(t, errcode.InvalidArgument, errcode.CodeOf(err))
}

func TestIndexSearch(t *testing.T) {
	ix, err := NewIndex(2, MetricL2)
	require.NoError(t, err)

	require.NoError(t, ix.Add(
		[]uint64{1, 2, 3},
		[][]float32{{0, 0}, {1, 0}, {5, 5}},
		[]string{"origin", "", "far"},
	))

	results, err := ix.Search([]float32{0.9, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, uint64(2), results[0].ID)
	assert.Equal(t, uint64(1), results[1].ID)
	assert.Equal(t, "origin", results[1].Metadata)
	assert.InDelta(t, 0.01, results[0].Score, 1e-6)

	results, err = ix.Search([]float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3, "k is clamped to the index size")

	_, err = ix.Search([]float32{0, 0, 0}, 1)
	assert.Equal(t, errcode.ValidationFailed, errcode.CodeOf(err))
	_, err = ix.Search([]float32{0, 0}, 0)
	assert.Equal(t, errcode.InvalidArgument, errcode.CodeOf(err))
}

func TestIndexAddUpdatesInPlace(t *testing.T) {
	ix, _ := NewIndex(2, MetricL2)
	require.NoError(t, ix.Add([]uint64{7}, [][]float32{{0, 0}}, []string{"old"}))
	require.NoError(t, ix.Add([]uint64{7}, [][]float32{{3, 4}}, []string{"new"}))

	assert.Equal(t, 1, ix.Len())
	results, err := ix.Search([]float32{0, 0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, results[0].Score, 1e-9)
	assert.Equal(t, "new", results[0].Metadata)
}

func TestIndexAddIsAllOrNothing(t *testing.T) {
	ix, _ := NewIndex(2, MetricL2)
	err := ix.Add([]uint64{1, 2}, [][]float32{{1, 1}, {1}}, nil)
	assert.Equal(t, errcode.ValidationFailed, errcode.CodeOf(err))
	assert.Zero(t, ix.Len())

	err = ix.Add([]uint64{1}, [][]float32{{1, 1}, {2, 2}}, nil)
	assert.Equal(t, errcode.InvalidArgument, errcode.CodeOf(err))
	err = ix.Add([]uint64{1}, [][]float32{{1, 1}}, []string{"a", "b"})
	assert.Equal(t, errcode.InvalidArgument, errcode.CodeOf(err))
}

func TestIndexRemove(t *testing.T) {
	ix, _ := NewIndex(1, MetricL2)
	require.NoError(t, ix.Add([]uint64{1, 2, 3}, [][]float32{{1}, {2}, {3}}, []string{"a", "b", "c"}))

	assert.Equal(t, 2, ix.Remove(1, 99, 3))
	assert.Equal(t, 1, ix.Len())

	results, err := ix.Search([]float32{0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(2), results[0].ID)
	assert.Equal(t, "b", results[0].Metadata)

	require.NoError(t, ix.Add([]uint64{1}, [][]float32{{1}}, nil))
	results, _ = ix.Search([]float32{0}, 5)
	assert.Empty(t, results[0].Metadata, "metadata of a removed id is gone")
}

func TestSnapshotRoundTrip(t *testing.T) {
	ix, _ := NewIndex(3, MetricCosine)
	require.NoError(t, ix.Add(
		[]uint64{10, 20},
		[][]float32{{1, 0, 0}, {0, 1, 0}},
		[]string{`{"doc":"a"}`, ""},
	))

	var buf bytes.Buffer
	require.NoError(t, ix.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, ix.Stats(), loaded.Stats())

	results, err := loaded.Search([]float32{1, 0.1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), results[0].ID)
	assert.Equal(t, `{"doc":"a"}`, results[0].Metadata)
}

func TestLoadRejectsGarbage(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("definitely not zstd")))
	assert.Equal(t, errcode.InvalidFormat, errcode.CodeOf(err))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.idx"))
	assert.Equal(t, errcode.FileNotFound, errcode.CodeOf(err))
}

func encodeHeader(t *testing.T, hdr snapshotHeader, body []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write([]byte(snapshotMagic))
	require.NoError(t, err)
	require.NoError(t, binary.Write(zw, binary.LittleEndian, hdr))
	_, err = zw.Write(body)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestLoadRejectsCorruptHeader(t *testing.T) {
	tests := []struct {
		name string
		hdr  snapshotHeader
	}{
		{"count overflows", snapshotHeader{Version: 1, Dimension: 2, Count: 1 << 63}},
		{"product wraps", snapshotHeader{Version: 1, Dimension: 1 << 31, Count: 1 << 33}},
		{"zero dimension", snapshotHeader{Version: 1, Dimension: 0, Count: 4}},
		{"too many floats", snapshotHeader{Version: 1, Dimension: 4, Count: maxSnapshotFloats}},
		{"truncated body", snapshotHeader{Version: 1, Dimension: 1, Count: 1 << 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeHeader(t, tt.hdr, []byte{0, 0, 0x80, 0x3f})
			var ix *Index
			var err error
			require.NotPanics(t, func() { ix, err = Load(bytes.NewReader(data)) })
			assert.Nil(t, ix)
			assert.Equal(t, errcode.InvalidFormat, errcode.CodeOf(err))
		})
	}
}

func TestLoadEmptySnapshot(t *testing.T) {
	ix, err := Load(bytes.NewReader(encodeHeader(t, snapshotHeader{Version: 1, Dimension: 3}, nil)))
	require.NoError(t, err)
	assert.Zero(t, ix.Len())
}

func TestCreateServiceWithCorruptIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.idx")
	require.NoError(t, os.WriteFile(path, encodeHeader(t, snapshotHeader{Version: 1, Dimension: 2, Count: 1 << 63}, nil), 0o600))

	deps := newDeps()
	require.NoError(t, New(deps, Config{Dimension: 2}).Register())

	_, err := deps.Services.CreateService(types.CapabilityVectorSearch, types.ServiceRequest{
		Options: map[string]string{OptionIndexPath: path},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errcode.ErrBackendFactoryFailed)
	assert.Equal(t, errcode.InvalidFormat, errcode.CodeOf(err))
}

func newDeps() backends.Deps {
	return backends.Deps{
		Modules:  registry.NewManager(nil, nil),
		Services: service.NewRegistry(nil, nil, nil),
	}
}

func TestCanHandle(t *testing.T) {
	assert.True(t, CanHandle(types.ServiceRequest{Capability: types.CapabilityVectorSearch}))
	assert.False(t, CanHandle(types.ServiceRequest{Capability: types.CapabilityEmbeddings}))
}

func TestServiceThroughRegistry(t *testing.T) {
	deps := newDeps()
	require.NoError(t, New(deps, Config{Dimension: 2, Metric: MetricInnerProduct}).Register())

	vs, err := service.Create[features.VectorSearch](deps.Services, types.CapabilityVectorSearch, types.ServiceRequest{})
	require.NoError(t, err)
	assert.Equal(t, features.IndexStats{Dimension: 2, Metric: "inner_product"}, vs.Stats())

	ctx := context.Background()
	require.NoError(t, vs.Add(ctx, []uint64{1, 2}, [][]float32{{1, 0}, {2, 0}}, nil))
	results, err := vs.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), results[0].ID)

	n, err := vs.Remove(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, vs.Close())
	_, err = vs.Search(ctx, []float32{1, 0}, 1)
	assert.Equal(t, errcode.InvalidHandle, errcode.CodeOf(err))
}

func TestServiceOptions(t *testing.T) {
	deps := newDeps()
	require.NoError(t, New(deps, Config{Dimension: 384, Metric: MetricCosine}).Register())

	svc, err := deps.Services.CreateService(types.CapabilityVectorSearch, types.ServiceRequest{
		Options: map[string]string{OptionDimension: "8", OptionMetric: "l2"},
	})
	require.NoError(t, err)
	assert.Equal(t, features.IndexStats{Dimension: 8, Metric: "l2"}, svc.(*Service).Stats())

	_, err = deps.Services.CreateService(types.CapabilityVectorSearch, types.ServiceRequest{
		Options: map[string]string{OptionDimension: "many"},
	})
	assert.Equal(t, errcode.InvalidArgument, errcode.CodeOf(err))
	assert.ErrorIs(t, err, errcode.ErrBackendFactoryFailed)
}

func TestServicePersistence(t *testing.T) {
	deps := newDeps()
	require.NoError(t, New(deps, Config{Dimension: 2, Metric: MetricL2}).Register())
	path := filepath.Join(t.TempDir(), "notes.idx")
	req := types.ServiceRequest{Options: map[string]string{OptionIndexPath: path}}

	svc, err := deps.Services.CreateService(types.CapabilityVectorSearch, req)
	require.NoError(t, err)
	first := svc.(*Service)
	require.NoError(t, first.Add(context.Background(), []uint64{5}, [][]float32{{1, 1}}, []string{"five"}))
	require.NoError(t, first.Save())
	require.NoError(t, first.Close())

	svc, err = deps.Services.CreateService(types.CapabilityVectorSearch, req)
	require.NoError(t, err)
	second := svc.(*Service)
	assert.Equal(t, 1, second.Stats().Vectors)
	results, err := second.Search(context.Background(), []float32{1, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, "five", results[0].Metadata)

	noPath, err := deps.Services.CreateService(types.CapabilityVectorSearch, types.ServiceRequest{})
	require.NoError(t, err)
	assert.Equal(t, errcode.InvalidState, errcode.CodeOf(noPath.(*Service).Save()))
}

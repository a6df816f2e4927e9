package memory

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"

	"github.com/runanywhere/commons/internal/errcode"
)

// Snapshot layout, zstd compressed:
//
//	magic "RACM" | version u32 | dimension u32 | metric u32 | count u64
//	vectors float32[count*dimension] | ids u64[count] | metadata JSON
//
// All integers are little endian.
const (
	snapshotMagic   = "RACM"
	snapshotVersion = 1

	maxSnapshotFloats = 1 << 30
)

type snapshotHeader struct {
	Version   uint32
	Dimension uint32
	Metric    uint32
	Count     uint64
}

// Save writes the index to w.
func (ix *Index) Save(w io.Writer) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return errcode.Wrap(errcode.FileWriteFailed, err, "zstd writer")
	}
	bw := bufio.NewWriter(zw)

	hdr := snapshotHeader{
		Version:   snapshotVersion,
		Dimension: uint32(ix.dimension),
		Metric:    uint32(ix.metric),
		Count:     uint64(len(ix.ids)),
	}
	if _, err := bw.WriteString(snapshotMagic); err != nil {
		return errcode.Wrap(errcode.FileWriteFailed, err, "header")
	}
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return errcode.Wrap(errcode.FileWriteFailed, err, "header")
	}

	row := make([]float32, ix.dimension)
	for _, v := range ix.vectors {
		for i, x := range v {
			row[i] = float32(x)
		}
		if err := binary.Write(bw, binary.LittleEndian, row); err != nil {
			return errcode.Wrap(errcode.FileWriteFailed, err, "vectors")
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, ix.ids); err != nil {
		return errcode.Wrap(errcode.FileWriteFailed, err, "ids")
	}

	keyed := make(map[string]string, len(ix.metadata))
	for id, m := range ix.metadata {
		keyed[strconv.FormatUint(id, 10)] = m
	}
	meta, err := sonic.Marshal(keyed)
	if err != nil {
		return errcode.Wrap(errcode.FileWriteFailed, err, "metadata")
	}
	if _, err := bw.Write(meta); err != nil {
		return errcode.Wrap(errcode.FileWriteFailed, err, "metadata")
	}

	if err := bw.Flush(); err != nil {
		return errcode.Wrap(errcode.FileWriteFailed, err, "flush")
	}
	if err := zw.Close(); err != nil {
		return errcode.Wrap(errcode.FileWriteFailed, err, "zstd close")
	}
	return nil
}

// Load reads an index written by Save.
func Load(r io.Reader) (*Index, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, errcode.Wrap(errcode.InvalidFormat, err, "zstd reader")
	}
	defer zr.Close()
	br := bufio.NewReader(zr)

	magic := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(br, magic); err != nil || string(magic) != snapshotMagic {
		return nil, errcode.New(errcode.InvalidFormat, "not an index snapshot")
	}
	var hdr snapshotHeader
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, errcode.Wrap(errcode.InvalidFormat, err, "header")
	}
	if hdr.Version != snapshotVersion {
		return nil, errcode.New(errcode.InvalidFormat, "snapshot version %d", hdr.Version)
	}
	if hdr.Dimension == 0 || hdr.Count > maxSnapshotFloats/uint64(hdr.Dimension) {
		return nil, errcode.New(errcode.InvalidFormat, "snapshot size out of range: %d x %d", hdr.Count, hdr.Dimension)
	}

	ix, err := NewIndex(int(hdr.Dimension), Metric(hdr.Metric))
	if err != nil {
		return nil, errcode.Wrap(errcode.InvalidFormat, err, "header")
	}

	count := int(hdr.Count)
	flat, err := readChunked[float32](br, count*ix.dimension)
	if err != nil {
		return nil, errcode.Wrap(errcode.InvalidFormat, err, "vectors")
	}
	ids, err := readChunked[uint64](br, count)
	if err != nil {
		return nil, errcode.Wrap(errcode.InvalidFormat, err, "ids")
	}
	rows := make([][]float32, count)
	for i := range rows {
		rows[i] = flat[i*ix.dimension : (i+1)*ix.dimension : (i+1)*ix.dimension]
	}

	rest, err := io.ReadAll(br)
	if err != nil {
		return nil, errcode.Wrap(errcode.InvalidFormat, err, "metadata")
	}
	keyed := make(map[string]string)
	if len(rest) > 0 {
		if err := sonic.Unmarshal(rest, &keyed); err != nil {
			return nil, errcode.Wrap(errcode.InvalidFormat, err, "metadata")
		}
	}

	if err := ix.Add(ids, rows, nil); err != nil {
		return nil, err
	}
	for key, m := range keyed {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, errcode.Wrap(errcode.InvalidFormat, err, "metadata id %q", key)
		}
		if _, ok := ix.pos[id]; ok {
			ix.metadata[id] = m
		}
	}
	return ix, nil
}

// readChunked reads n little endian values, growing the result only as data
// arrives so a lying header cannot force a large allocation.
func readChunked[T float32 | uint64](r io.Reader, n int) ([]T, error) {
	const chunk = 1 << 16
	out := make([]T, 0, min(n, chunk))
	buf := make([]T, min(n, chunk))
	for len(out) < n {
		step := buf[:min(n-len(out), chunk)]
		if err := binary.Read(r, binary.LittleEndian, step); err != nil {
			return nil, err
		}
		out = append(out, step...)
	}
	return out, nil
}

// SaveFile writes the index to path, replacing it atomically.
func (ix *Index) SaveFile(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errcode.Wrap(errcode.FileWriteFailed, err, "%s", path)
	}
	if err := ix.Save(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errcode.Wrap(errcode.FileWriteFailed, err, "%s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errcode.Wrap(errcode.FileWriteFailed, err, "%s", path)
	}
	return nil
}

// LoadFile reads an index from path.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errcode.Wrap(errcode.FileNotFound, err, "%s", path)
		}
		return nil, errcode.Wrap(errcode.FileReadFailed, err, "%s", path)
	}
	defer f.Close()
	return Load(f)
}

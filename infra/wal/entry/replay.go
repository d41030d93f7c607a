package entry

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

var ErrCorrupt = errors.New("entry wal: corrupt record")

// MaxRecordSize bounds a record payload. Commands are a few hundred
// bytes; anything larger on disk is a damaged length field.
const MaxRecordSize = 1 << 20

type ReplayHandler func(*Record) error

// Replay feeds every record with Seq > after to fn, oldest first, and
// returns the last sequence seen. A torn record at the tail of the last
// segment ends replay without error.
func Replay(dir string, after uint64, fn ReplayHandler) (lastSeq uint64, err error) {
	files, err := listSegments(dir)
	if err != nil {
		return 0, err
	}

	lastSeq = after
	for i, path := range files {
		last := i == len(files)-1
		lastSeq, err = replaySegment(path, after, lastSeq, last, fn)
		if err != nil {
			return lastSeq, err
		}
	}
	return lastSeq, nil
}

func replaySegment(path string, after, lastSeq uint64, tail bool, fn ReplayHandler) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return lastSeq, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return lastSeq, err
	}
	remaining := st.Size()

	r := bufio.NewReader(f)
	for {
		rec, err := readRecord(r, remaining)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lastSeq, nil
			}
			if tail && errors.Is(err, io.ErrUnexpectedEOF) {
				return lastSeq, nil
			}
			return lastSeq, fmt.Errorf("%s: %w", path, err)
		}

		remaining -= int64(headerSize + len(rec.Data) + 4)

		if rec.Seq <= after {
			continue
		}
		if rec.Seq <= lastSeq {
			return lastSeq, fmt.Errorf("%w: non-monotonic seq %d after %d", ErrCorrupt, rec.Seq, lastSeq)
		}
		lastSeq = rec.Seq

		if err := fn(rec); err != nil {
			return lastSeq, err
		}
	}
}

// readRecord reads the next record. remaining is the number of unread
// bytes in the segment; a length that runs past it is a torn record.
func readRecord(r io.Reader, remaining int64) (*Record, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	l := binary.BigEndian.Uint32(header[17:21])
	if l > MaxRecordSize {
		return nil, fmt.Errorf("%w: record length %d", ErrCorrupt, l)
	}
	if int64(l)+4 > remaining-headerSize {
		return nil, io.ErrUnexpectedEOF
	}
	data := make([]byte, int(l)+4)
	if _, err := io.ReadFull(r, data); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	payload := data[:l]
	if checksum(header, payload) != binary.BigEndian.Uint32(data[l:]) {
		return nil, fmt.Errorf("%w: crc mismatch", ErrCorrupt)
	}

	return &Record{
		Type: header[0],
		Seq:  binary.BigEndian.Uint64(header[1:9]),
		Time: int64(binary.BigEndian.Uint64(header[9:17])),
		Data: payload,
	}, nil
}

package numindex

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/youzan/zangeo/index"
)

const (
	IndexDataType byte = 40

	numIndexDataType  byte = 1
	docValuesDataType byte = 2

	indexStartSep byte = ':'
)

var (
	errNumIndexKey  = errors.New("invalid numeric index key")
	errDocValues    = errors.New("invalid doc values")
	errFieldName    = errors.New("invalid field name")
	errInvalidValue = errors.New("invalid numeric value")
)

// encodeSortableFloat64 returns 8 bytes which compare as the float.
func encodeSortableFloat64(v float64) uint64 {
	bits := math.Float64bits(v)
	if bits&(1<<63) == 0 {
		return bits | (1 << 63)
	}
	return ^bits
}

func decodeSortableFloat64(u uint64) float64 {
	if u&(1<<63) != 0 {
		return math.Float64frombits(u &^ (1 << 63))
	}
	return math.Float64frombits(^u)
}

func encodeFieldPrefix(dt byte, field []byte, extra int) ([]byte, int) {
	tmpkey := make([]byte, 2+2+len(field)+1+extra)
	pos := 0
	tmpkey[pos] = IndexDataType
	pos++
	tmpkey[pos] = dt
	pos++
	binary.BigEndian.PutUint16(tmpkey[pos:], uint16(len(field)))
	pos += 2
	copy(tmpkey[pos:], field)
	pos += len(field)
	tmpkey[pos] = indexStartSep
	pos++
	return tmpkey, pos
}

// encodeNumIndexKey is the key of one indexed value, ordered by value then
// document id.
func encodeNumIndexKey(field []byte, v float64, id index.DocID) []byte {
	tmpkey, pos := encodeFieldPrefix(numIndexDataType, field, 8+1+8)
	binary.BigEndian.PutUint64(tmpkey[pos:], encodeSortableFloat64(v))
	pos += 8
	tmpkey[pos] = indexStartSep
	pos++
	binary.BigEndian.PutUint64(tmpkey[pos:], uint64(id))
	return tmpkey
}

func encodeNumIndexStartKey(field []byte, v float64) []byte {
	tmpkey, pos := encodeFieldPrefix(numIndexDataType, field, 8+1)
	binary.BigEndian.PutUint64(tmpkey[pos:], encodeSortableFloat64(v))
	pos += 8
	tmpkey[pos] = indexStartSep
	return tmpkey
}

func encodeNumIndexStopKey(field []byte, v float64) []byte {
	k := encodeNumIndexStartKey(field, v)
	k[len(k)-1] = k[len(k)-1] + 1
	return k
}

func decodeNumIndexKey(rawKey []byte) ([]byte, float64, index.DocID, error) {
	pos := 0
	if len(rawKey) < pos+2+2+1+8+1+8 {
		return nil, 0, 0, errNumIndexKey
	}
	if rawKey[0] != IndexDataType || rawKey[1] != numIndexDataType {
		return nil, 0, 0, errNumIndexKey
	}
	pos += 2
	fieldLen := int(binary.BigEndian.Uint16(rawKey[pos:]))
	pos += 2
	if len(rawKey) != pos+fieldLen+1+8+1+8 {
		return nil, 0, 0, errNumIndexKey
	}
	field := rawKey[pos : pos+fieldLen]
	pos += fieldLen
	if rawKey[pos] != indexStartSep {
		return nil, 0, 0, errNumIndexKey
	}
	pos++
	v := decodeSortableFloat64(binary.BigEndian.Uint64(rawKey[pos:]))
	pos += 8
	if rawKey[pos] != indexStartSep {
		return nil, 0, 0, errNumIndexKey
	}
	pos++
	id := index.DocID(binary.BigEndian.Uint64(rawKey[pos:]))
	return field, v, id, nil
}

// encodeDocValuesKey is the key holding all the values of a document so
// they can be found on removal.
func encodeDocValuesKey(field []byte, id index.DocID) []byte {
	tmpkey, pos := encodeFieldPrefix(docValuesDataType, field, 8)
	binary.BigEndian.PutUint64(tmpkey[pos:], uint64(id))
	return tmpkey
}

func decodeDocValuesField(rawKey []byte) ([]byte, error) {
	if len(rawKey) < 2+2+1+8 || rawKey[0] != IndexDataType || rawKey[1] != docValuesDataType {
		return nil, errDocValues
	}
	fieldLen := int(binary.BigEndian.Uint16(rawKey[2:]))
	if len(rawKey) != 2+2+fieldLen+1+8 {
		return nil, errDocValues
	}
	return rawKey[4 : 4+fieldLen], nil
}

func encodeDocValuesStartKey(field []byte) []byte {
	k, _ := encodeFieldPrefix(docValuesDataType, field, 0)
	return k
}

func encodeDocValuesStopKey(field []byte) []byte {
	k := encodeDocValuesStartKey(field)
	k[len(k)-1] = k[len(k)-1] + 1
	return k
}

func encodeDocValues(values []float64) []byte {
	b := make([]byte, 8*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return b
}

func decodeDocValues(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, errDocValues
	}
	values := make([]float64, 0, len(b)/8)
	for i := 0; i < len(b); i += 8 {
		values = append(values, math.Float64frombits(binary.BigEndian.Uint64(b[i:])))
	}
	return values, nil
}

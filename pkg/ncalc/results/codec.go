package results

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/numeric"
)

// Kind tags of encoded values.
const (
	KindNull     = "null"
	KindBool     = "bool"
	KindString   = "string"
	KindChar     = "char"
	KindInt8     = "int8"
	KindUint8    = "uint8"
	KindInt16    = "int16"
	KindUint16   = "uint16"
	KindInt32    = "int32"
	KindUint32   = "uint32"
	KindInt64    = "int64"
	KindUint64   = "uint64"
	KindFloat32  = "float32"
	KindFloat64  = "float64"
	KindDecimal  = "decimal"
	KindBigInt   = "bigint"
	KindDateTime = "datetime"
	KindTimeSpan = "timespan"
	KindGUID     = "guid"
	KindPercent  = "percent"
	KindList     = "list"
)

// item is the JSON form of an element of a list or the inside of a
// percent.
type item struct {
	Kind  string `json:"k"`
	Value string `json:"v"`
	From  string `json:"o,omitempty"`
	Float bool   `json:"f,omitempty"`
}

// Encode converts v to a kind tag and its canonical text.
func Encode(v any) (kind, text string, err error) {
	switch x := numeric.Normalize(v).(type) {
	case nil:
		return KindNull, "", nil
	case bool:
		return KindBool, strconv.FormatBool(x), nil
	case string:
		return KindString, x, nil
	case numeric.Char:
		return KindChar, x.String(), nil
	case int8:
		return KindInt8, strconv.FormatInt(int64(x), 10), nil
	case uint8:
		return KindUint8, strconv.FormatUint(uint64(x), 10), nil
	case int16:
		return KindInt16, strconv.FormatInt(int64(x), 10), nil
	case uint16:
		return KindUint16, strconv.FormatUint(uint64(x), 10), nil
	case int32:
		return KindInt32, strconv.FormatInt(int64(x), 10), nil
	case uint32:
		return KindUint32, strconv.FormatUint(uint64(x), 10), nil
	case int64:
		return KindInt64, strconv.FormatInt(x, 10), nil
	case uint64:
		return KindUint64, strconv.FormatUint(x, 10), nil
	case float32:
		return KindFloat32, strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case float64:
		return KindFloat64, strconv.FormatFloat(x, 'g', -1, 64), nil
	case decimal.Decimal:
		return KindDecimal, x.String(), nil
	case *big.Int:
		return KindBigInt, x.String(), nil
	case time.Time:
		return KindDateTime, x.Format(time.RFC3339Nano), nil
	case time.Duration:
		return KindTimeSpan, strconv.FormatInt(int64(x), 10), nil
	case uuid.UUID:
		return KindGUID, x.String(), nil
	case numeric.Percent:
		k, t, err := Encode(x.Value)
		if err != nil {
			return "", "", err
		}
		b, err := json.Marshal(item{Kind: k, Value: t, From: x.Kind.String(), Float: x.Type == numeric.PercentFloat})
		if err != nil {
			return "", "", err
		}
		return KindPercent, string(b), nil
	case []any:
		items := make([]item, len(x))
		for i, e := range x {
			k, t, err := Encode(e)
			if err != nil {
				return "", "", fmt.Errorf("encode list item %d: %w", i, err)
			}
			items[i] = item{Kind: k, Value: t}
		}
		b, err := json.Marshal(items)
		if err != nil {
			return "", "", err
		}
		return KindList, string(b), nil
	}
	return "", "", fmt.Errorf("cannot encode value of type %T", v)
}

// Decode reverses Encode.
func Decode(kind, text string) (any, error) {
	switch kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return strconv.ParseBool(text)
	case KindString:
		return text, nil
	case KindChar:
		r := []rune(text)
		if len(r) != 1 {
			return nil, fmt.Errorf("decode char: %q is not one character", text)
		}
		return numeric.Char(r[0]), nil
	case KindInt8, KindInt16, KindInt32, KindInt64:
		bits := map[string]int{KindInt8: 8, KindInt16: 16, KindInt32: 32, KindInt64: 64}[kind]
		n, err := strconv.ParseInt(text, 10, bits)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		switch kind {
		case KindInt8:
			return int8(n), nil
		case KindInt16:
			return int16(n), nil
		case KindInt32:
			return int32(n), nil
		}
		return n, nil
	case KindUint8, KindUint16, KindUint32, KindUint64:
		bits := map[string]int{KindUint8: 8, KindUint16: 16, KindUint32: 32, KindUint64: 64}[kind]
		n, err := strconv.ParseUint(text, 10, bits)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		switch kind {
		case KindUint8:
			return uint8(n), nil
		case KindUint16:
			return uint16(n), nil
		case KindUint32:
			return uint32(n), nil
		}
		return n, nil
	case KindFloat32:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, fmt.Errorf("decode float32: %w", err)
		}
		return float32(f), nil
	case KindFloat64:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("decode float64: %w", err)
		}
		return f, nil
	case KindDecimal:
		d, err := decimal.NewFromString(text)
		if err != nil {
			return nil, fmt.Errorf("decode decimal: %w", err)
		}
		return d, nil
	case KindBigInt:
		b, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return nil, fmt.Errorf("decode bigint: invalid text %q", text)
		}
		return b, nil
	case KindDateTime:
		t, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return nil, fmt.Errorf("decode datetime: %w", err)
		}
		return t, nil
	case KindTimeSpan:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode timespan: %w", err)
		}
		return time.Duration(n), nil
	case KindGUID:
		return uuid.Parse(text)
	case KindPercent:
		var it item
		if err := json.Unmarshal([]byte(text), &it); err != nil {
			return nil, fmt.Errorf("decode percent: %w", err)
		}
		v, err := Decode(it.Kind, it.Value)
		if err != nil {
			return nil, err
		}
		p := numeric.Percent{Value: v, Kind: kindByName(it.From)}
		if it.Float {
			p.Type = numeric.PercentFloat
		}
		return p, nil
	case KindList:
		var items []item
		if err := json.Unmarshal([]byte(text), &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		out := make([]any, len(items))
		for i, it := range items {
			v, err := Decode(it.Kind, it.Value)
			if err != nil {
				return nil, fmt.Errorf("decode list item %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown value kind %q", kind)
}

func kindByName(name string) numeric.Kind {
	for k := numeric.KindNone; k <= numeric.KindBigInt; k++ {
		if strings.EqualFold(k.String(), name) {
			return k
		}
	}
	return numeric.KindNone
}

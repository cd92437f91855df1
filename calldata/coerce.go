package calldata

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
)

var bigIntType = reflect.TypeOf((*big.Int)(nil))

// coerce converts text into the Go value abi packing expects for typ.
// Elements of array and tuple literals are nested and may be quoted.
func coerce(typ abi.Type, text string, nested bool) (reflect.Value, error) {
	if nested {
		text = strings.TrimSpace(text)
	}
	switch typ.T {
	case abi.IntTy, abi.UintTy:
		n, err := parseInteger(typ, text)
		if err != nil {
			return reflect.Value{}, err
		}
		return integerValue(typ, n), nil

	case abi.BoolTy:
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid bool %q", text)
		}
		return reflect.ValueOf(b), nil

	case abi.AddressTy:
		s := strings.TrimSpace(text)
		if !common.IsHexAddress(s) {
			return reflect.Value{}, fmt.Errorf("invalid address %q", text)
		}
		return reflect.ValueOf(common.HexToAddress(s)), nil

	case abi.StringTy:
		if nested && len(text) >= 2 && text[0] == '"' {
			s, err := strconv.Unquote(text)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("invalid quoted string %s: %w", text, err)
			}
			return reflect.ValueOf(s), nil
		}
		return reflect.ValueOf(text), nil

	case abi.BytesTy:
		b, err := decodeHex(text)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b), nil

	case abi.FixedBytesTy, abi.FunctionTy:
		b, err := decodeHex(text)
		if err != nil {
			return reflect.Value{}, err
		}
		size := typ.Size
		if typ.T == abi.FunctionTy {
			size = 24
		}
		if len(b) != size {
			return reflect.Value{}, fmt.Errorf("expected %d bytes, got %d", size, len(b))
		}
		v := reflect.New(typ.GetType()).Elem()
		reflect.Copy(v, reflect.ValueOf(b))
		return v, nil

	case abi.SliceTy, abi.ArrayTy:
		elems, err := splitLiteral(text, '[', ']')
		if err != nil {
			return reflect.Value{}, err
		}
		var v reflect.Value
		if typ.T == abi.ArrayTy {
			if len(elems) != typ.Size {
				return reflect.Value{}, fmt.Errorf("expected %d array elements, got %d", typ.Size, len(elems))
			}
			v = reflect.New(typ.GetType()).Elem()
		} else {
			v = reflect.MakeSlice(typ.GetType(), len(elems), len(elems))
		}
		for i, elem := range elems {
			ev, err := coerce(*typ.Elem, elem, true)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element #%d: %w", i, err)
			}
			v.Index(i).Set(ev)
		}
		return v, nil

	case abi.TupleTy:
		elems, err := splitLiteral(text, '(', ')')
		if err != nil {
			return reflect.Value{}, err
		}
		if len(elems) != len(typ.TupleElems) {
			return reflect.Value{}, fmt.Errorf("expected %d tuple components, got %d", len(typ.TupleElems), len(elems))
		}
		v := reflect.New(typ.GetType()).Elem()
		for i, elem := range elems {
			ev, err := coerce(*typ.TupleElems[i], elem, true)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("component #%d: %w", i, err)
			}
			v.Field(i).Set(ev)
		}
		return v, nil

	default:
		return reflect.Value{}, fmt.Errorf("unsupported type %s", typ.String())
	}
}

// parseInteger accepts decimal or 0x-prefixed hex, with a leading minus sign
// for signed types, and checks the result fits typ.
func parseInteger(typ abi.Type, text string) (*big.Int, error) {
	s := strings.TrimSpace(text)
	neg := false
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		neg, s = true, rest
	}
	if s == "" || s[0] == '-' || s[0] == '+' {
		return nil, fmt.Errorf("invalid integer %q", text)
	}
	n, ok := math.ParseBig256(s)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", text)
	}
	if neg {
		if typ.T == abi.UintTy && n.Sign() != 0 {
			return nil, fmt.Errorf("negative value %q for %s", text, typ.String())
		}
		n.Neg(n)
	}

	if typ.T == abi.UintTy {
		if n.BitLen() > typ.Size {
			return nil, fmt.Errorf("value %q overflows %s", text, typ.String())
		}
		return n, nil
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Size-1))
	if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
		return nil, fmt.Errorf("value %q overflows %s", text, typ.String())
	}
	return n, nil
}

// integerValue uses the native Go integer kinds abi expects for 8..64 bit
// sizes and *big.Int otherwise.
func integerValue(typ abi.Type, n *big.Int) reflect.Value {
	goType := typ.GetType()
	if goType == bigIntType {
		return reflect.ValueOf(n)
	}
	v := reflect.New(goType).Elem()
	if typ.T == abi.UintTy {
		v.SetUint(n.Uint64())
	} else {
		v.SetInt(n.Int64())
	}
	return v
}

func decodeHex(text string) ([]byte, error) {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", text, err)
	}
	return b, nil
}

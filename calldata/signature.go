package calldata

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/DQYXACML/inkbench/utils"
)

// Param is one declared parameter of a function signature.
type Param struct {
	Name string // empty when the signature omits it
	Type string // canonical type, e.g. uint256[] or (address,uint256)
}

func (p Param) String() string {
	if p.Name == "" {
		return p.Type
	}
	return p.Type + " " + p.Name
}

// Signature is a parsed, canonicalised function signature. Types are not
// resolved yet; see Resolve.
type Signature struct {
	Name   string
	Params []Param

	selector abi.SelectorMarshaling
}

// String returns the canonical form the selector is derived from.
func (s *Signature) String() string {
	types := make([]string, len(s.Params))
	for i, p := range s.Params {
		types[i] = p.Type
	}
	return fmt.Sprintf("%s(%s)", s.Name, strings.Join(types, ","))
}

// ParseSignature parses text such as "setNumber(uint)" or
// "function transfer(address to, uint256 amount) external returns (bool)".
func ParseSignature(text string) (*Signature, error) {
	s := strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(s, "function"); ok && rest != "" && isSpace(rest[0]) {
		s = strings.TrimSpace(rest)
	}

	open := strings.IndexByte(s, '(')
	if open < 0 {
		return nil, signatureError(text, "missing parameter list", nil)
	}
	name := strings.TrimSpace(s[:open])
	if !isIdentifier(name) {
		return nil, signatureError(text, fmt.Sprintf("invalid function name %q", name), nil)
	}
	end, err := matchingClose(s, open)
	if err != nil {
		return nil, signatureError(text, "unbalanced parameter list", err)
	}
	// Modifiers and a returns clause may follow, separated by whitespace.
	if trailer := s[end+1:]; trailer != "" && !isSpace(trailer[0]) {
		return nil, signatureError(text, fmt.Sprintf("unexpected %q after parameter list", trailer), nil)
	}

	var params []Param
	if inner := strings.TrimSpace(s[open+1 : end]); inner != "" {
		parts, err := splitTopLevel(inner, ',')
		if err != nil {
			return nil, signatureError(text, "malformed parameter list", err)
		}
		for i, part := range parts {
			param, err := canonicalParam(part)
			if err != nil {
				return nil, signatureError(text, fmt.Sprintf("parameter #%d", i), err)
			}
			params = append(params, param)
		}
	}

	sig := &Signature{Name: name, Params: params}
	selector, err := abi.ParseSelector(sig.String())
	if err != nil {
		return nil, signatureError(text, "invalid selector "+sig.String(), err)
	}
	if len(selector.Inputs) != len(params) {
		return nil, signatureError(text, fmt.Sprintf("parsed %d parameters, expected %d", len(selector.Inputs), len(params)), nil)
	}
	sig.selector = selector
	return sig, nil
}

// Resolve turns every parameter into a concrete ABI type.
func (s *Signature) Resolve() (*Method, error) {
	inputs := make(abi.Arguments, len(s.selector.Inputs))
	for i, in := range s.selector.Inputs {
		typ, err := abi.NewType(in.Type, "", in.Components)
		if err == nil {
			err = validateType(typ)
		}
		if err != nil {
			return nil, utils.WrapError(utils.ErrorTypeTypeResolution, "could not resolve arg: "+s.Params[i].String(), err).
				AddContext("param", i)
		}
		inputs[i] = abi.Argument{Name: in.Name, Type: typ}
	}
	method := abi.NewMethod(s.Name, s.Name, abi.Function, "", false, false, inputs, nil)
	return &Method{sig: s, method: method}, nil
}

// validateType rejects sizes abi.NewType accepts but Solidity does not.
func validateType(typ abi.Type) error {
	switch typ.T {
	case abi.IntTy, abi.UintTy:
		if typ.Size < 8 || typ.Size > 256 || typ.Size%8 != 0 {
			return fmt.Errorf("invalid integer size %d", typ.Size)
		}
	case abi.FixedBytesTy:
		if typ.Size < 1 || typ.Size > 32 {
			return fmt.Errorf("invalid fixed bytes size %d", typ.Size)
		}
	case abi.SliceTy, abi.ArrayTy:
		return validateType(*typ.Elem)
	case abi.TupleTy:
		for _, elem := range typ.TupleElems {
			if err := validateType(*elem); err != nil {
				return err
			}
		}
	case abi.FixedPointTy, abi.HashTy:
		return fmt.Errorf("unsupported type %s", typ.String())
	}
	return nil
}

// canonicalParam strips the optional location and name of one parameter and
// expands type aliases.
func canonicalParam(text string) (Param, error) {
	p := strings.TrimSpace(text)
	if p == "" {
		return Param{}, fmt.Errorf("empty parameter")
	}

	typeEnd, err := typeExtent(p)
	if err != nil {
		return Param{}, err
	}
	typ, err := canonicalType(p[:typeEnd])
	if err != nil {
		return Param{}, err
	}

	rest := p[typeEnd:]
	if rest != "" && !isSpace(rest[0]) {
		return Param{}, fmt.Errorf("unexpected %q after type", rest)
	}
	var name string
	words := strings.Fields(rest)
	switch len(words) {
	case 0:
	case 1:
		if !isLocation(words[0]) {
			name = words[0]
		}
	case 2:
		if !isLocation(words[0]) {
			return Param{}, fmt.Errorf("unknown data location %q", words[0])
		}
		name = words[1]
	default:
		return Param{}, fmt.Errorf("unexpected %q after type", strings.TrimSpace(rest))
	}
	if name != "" && !isIdentifier(name) {
		return Param{}, fmt.Errorf("invalid parameter name %q", name)
	}
	return Param{Name: name, Type: typ}, nil
}

// typeExtent returns the length of the type expression at the start of p.
func typeExtent(p string) (int, error) {
	i := 0
	if p[0] == '(' {
		end, err := matchingClose(p, 0)
		if err != nil {
			return 0, err
		}
		i = end + 1
	} else {
		for i < len(p) && isIdentChar(p[i]) {
			i++
		}
		if i == 0 {
			return 0, fmt.Errorf("expected type, got %q", p)
		}
	}
	for i < len(p) && p[i] == '[' {
		end := strings.IndexByte(p[i:], ']')
		if end < 0 {
			return 0, fmt.Errorf("unterminated array suffix in %q", p)
		}
		i += end + 1
	}
	return i, nil
}

func canonicalType(t string) (string, error) {
	base, suffix := t, ""
	if t[0] == '(' {
		end, err := matchingClose(t, 0)
		if err != nil {
			return "", err
		}
		base, suffix = t[:end+1], t[end+1:]
		var components []string
		if inner := strings.TrimSpace(base[1 : len(base)-1]); inner != "" {
			parts, err := splitTopLevel(inner, ',')
			if err != nil {
				return "", err
			}
			for _, part := range parts {
				param, err := canonicalParam(part)
				if err != nil {
					return "", err
				}
				components = append(components, param.Type)
			}
		}
		base = "(" + strings.Join(components, ",") + ")"
	} else if i := strings.IndexByte(t, '['); i >= 0 {
		base, suffix = t[:i], t[i:]
	}

	switch base {
	case "tuple":
		return "", fmt.Errorf("tuple needs its components, e.g. (uint256,address)")
	case "uint", "int":
		base += "256"
	case "byte":
		base = "bytes1"
	}
	return base + strings.ReplaceAll(suffix, " ", ""), nil
}

func signatureError(text, message string, cause error) error {
	return utils.WrapError(utils.ErrorTypeSignatureParse, "failed to parse function signature: "+message, cause).
		AddContext("signature", text)
}

func isLocation(word string) bool {
	switch word {
	case "memory", "calldata", "storage", "indexed", "payable":
		return true
	}
	return false
}

func isIdentifier(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

package calldata

import (
	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/DQYXACML/inkbench/utils"
)

// Method is a signature whose parameter types have been resolved.
type Method struct {
	sig    *Signature
	method abi.Method
}

// Parse parses and resolves a function signature.
func Parse(signature string) (*Method, error) {
	sig, err := ParseSignature(signature)
	if err != nil {
		return nil, err
	}
	return sig.Resolve()
}

// Sig returns the canonical signature, e.g. setNumber(uint256).
func (m *Method) Sig() string {
	return m.method.Sig
}

// ID returns the 4-byte function selector.
func (m *Method) ID() []byte {
	return m.method.ID
}

// Inputs returns the resolved parameters.
func (m *Method) Inputs() abi.Arguments {
	return m.method.Inputs
}

// Encode coerces args against the parameters and returns selector || abi.encode(args).
func (m *Method) Encode(args []string) ([]byte, error) {
	inputs := m.method.Inputs
	if len(args) != len(inputs) {
		return nil, utils.NewCountMismatchError(len(inputs), len(args))
	}

	values := make([]interface{}, 0, len(args))
	for i, arg := range args {
		v, err := coerce(inputs[i].Type, arg, false)
		if err != nil {
			return nil, utils.WrapError(utils.ErrorTypeArgumentCoercion, "could not parse arg: "+m.sig.Params[i].String(), err).
				AddContext("param", i).
				AddContext("arg", arg)
		}
		values = append(values, v.Interface())
	}

	packed, err := inputs.Pack(values...)
	if err != nil {
		return nil, utils.WrapError(utils.ErrorTypeEncoding, "failed to encode input", err).
			AddContext("signature", m.Sig())
	}
	data := make([]byte, 0, len(m.method.ID)+len(packed))
	data = append(data, m.method.ID...)
	return append(data, packed...), nil
}

// GenerateCalldata parses the method signature and arguments, returning the
// calldata. The argument count is checked before any type is resolved.
func GenerateCalldata(signature string, args []string) ([]byte, error) {
	sig, err := ParseSignature(signature)
	if err != nil {
		return nil, err
	}
	if len(args) != len(sig.Params) {
		return nil, utils.NewCountMismatchError(len(sig.Params), len(args))
	}
	method, err := sig.Resolve()
	if err != nil {
		return nil, err
	}
	return method.Encode(args)
}

package bindings

import (
	"fmt"
)

// MethodName returns the name of the VotesToken method selected by the first
// four bytes of calldata. It works alongside the generated ABI bindings.
func (votesToken *VotesToken) MethodName(data []byte) (string, error) {
	if len(data) < 4 {
		return "", fmt.Errorf("calldata too short: %d bytes", len(data))
	}
	method, err := votesToken.abi.MethodById(data[:4])
	if err != nil {
		return "", err
	}
	return method.Name, nil
}

// DecodeArgs unpacks the call arguments of VotesToken calldata by method name.
func (votesToken *VotesToken) DecodeArgs(data []byte) (string, []any, error) {
	name, err := votesToken.MethodName(data)
	if err != nil {
		return "", nil, err
	}
	args, err := votesToken.abi.Methods[name].Inputs.Unpack(data[4:])
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode %s arguments: %w", name, err)
	}
	return name, args, nil
}

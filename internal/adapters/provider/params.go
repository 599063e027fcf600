package provider

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/unlock-community/updelegate/internal/domain"
)

// sendTxArgs is the eth_sendTransaction parameter object
type sendTxArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Data  hexutil.Bytes   `json:"data"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
}

// decodeParam re-encodes params[i] into out, so callers may pass
// typed structs or raw JSON maps alike
func decodeParam(params []any, i int, out any) error {
	if len(params) <= i {
		return invalidParams(fmt.Sprintf("missing parameter %d", i))
	}
	data, err := json.Marshal(params[i])
	if err != nil {
		return invalidParams(err.Error())
	}
	if err := json.Unmarshal(data, out); err != nil {
		return invalidParams(err.Error())
	}
	return nil
}

func invalidParams(msg string) error {
	return &domain.ProviderError{Code: codeInvalidParams, Message: "invalid params: " + msg}
}

func marshalResult(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// JSON-RPC 2.0 codes used alongside the EIP-1193 ones
const (
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
)
